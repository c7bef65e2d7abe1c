package authnet

const (
	aimLiveURL = "https://secure2.authorize.net/gateway/transact.dll"
	aimTestURL = "https://test.authorize.net/gateway/transact.dll"
	cimLiveURL = "https://api2.authorize.net/xml/v1/request.api"
	cimTestURL = "https://apitest.authorize.net/xml/v1/request.api"
)

// Gateway names recorded on audit records and metrics
const (
	GatewayAIM = "authnet_aim"
	GatewayCIM = "authnet_cim"
)

// Endpoints holds the URLs of both processor APIs
type Endpoints struct {
	AIM string
	CIM string
}

// DefaultEndpoints returns the production hosts, or the sandbox hosts when
// devMode is set.
func DefaultEndpoints(devMode bool) Endpoints {
	if devMode {
		return Endpoints{AIM: aimTestURL, CIM: cimTestURL}
	}
	return Endpoints{AIM: aimLiveURL, CIM: cimLiveURL}
}
