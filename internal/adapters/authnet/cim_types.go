package authnet

import "encoding/xml"

// Profile API request and response documents. The json tags give the field
// names used in audit payloads, which match the XML element names so the
// default mask rules apply to both.

type merchantAuthentication struct {
	Name           string `xml:"name" json:"name"`
	TransactionKey string `xml:"transactionKey" json:"transactionKey"`
}

type cimCreditCard struct {
	CardNumber     string `xml:"cardNumber" json:"cardNumber"`
	ExpirationDate string `xml:"expirationDate" json:"expirationDate"`
	CardCode       string `xml:"cardCode,omitempty" json:"cardCode,omitempty"`
}

type cimBankAccount struct {
	AccountType   string `xml:"accountType,omitempty" json:"accountType,omitempty"`
	RoutingNumber string `xml:"routingNumber" json:"routingNumber"`
	AccountNumber string `xml:"accountNumber" json:"accountNumber"`
	NameOnAccount string `xml:"nameOnAccount" json:"nameOnAccount"`
	EcheckType    string `xml:"echeckType,omitempty" json:"echeckType,omitempty"`
	BankName      string `xml:"bankName,omitempty" json:"bankName,omitempty"`
}

type cimPayment struct {
	CreditCard  *cimCreditCard  `xml:"creditCard,omitempty" json:"creditCard,omitempty"`
	BankAccount *cimBankAccount `xml:"bankAccount,omitempty" json:"bankAccount,omitempty"`
}

type cimAddress struct {
	FirstName string `xml:"firstName,omitempty" json:"firstName,omitempty"`
	LastName  string `xml:"lastName,omitempty" json:"lastName,omitempty"`
	Company   string `xml:"company,omitempty" json:"company,omitempty"`
	Address   string `xml:"address,omitempty" json:"address,omitempty"`
	City      string `xml:"city,omitempty" json:"city,omitempty"`
	State     string `xml:"state,omitempty" json:"state,omitempty"`
	Zip       string `xml:"zip,omitempty" json:"zip,omitempty"`
	Country   string `xml:"country,omitempty" json:"country,omitempty"`
}

type cimPaymentProfile struct {
	CustomerType             string      `xml:"customerType,omitempty" json:"customerType,omitempty"`
	BillTo                   *cimAddress `xml:"billTo,omitempty" json:"billTo,omitempty"`
	Payment                  cimPayment  `xml:"payment" json:"payment"`
	CustomerPaymentProfileID string      `xml:"customerPaymentProfileId,omitempty" json:"customerPaymentProfileId,omitempty"`
}

type cimProfile struct {
	MerchantCustomerID string              `xml:"merchantCustomerId,omitempty" json:"merchantCustomerId,omitempty"`
	Description        string              `xml:"description,omitempty" json:"description,omitempty"`
	Email              string              `xml:"email,omitempty" json:"email,omitempty"`
	PaymentProfiles    []cimPaymentProfile `xml:"paymentProfiles" json:"paymentProfiles"`
}

// existingProfileIDs carries the account reference ids the owner already has
// stored, so the processor can detect a duplicate payment profile.
type existingProfileIDs struct {
	IDs []string `xml:"numericString" json:"numericString"`
}

type createCustomerProfileRequest struct {
	XMLName                xml.Name               `xml:"AnetApi/xml/v1/schema/AnetApiSchema.xsd createCustomerProfileRequest" json:"-"`
	MerchantAuthentication merchantAuthentication `xml:"merchantAuthentication" json:"merchantAuthentication"`
	Profile                cimProfile             `xml:"profile" json:"profile"`
	ExistingProfiles       *existingProfileIDs    `xml:"existingPaymentProfileIdList,omitempty" json:"existingPaymentProfileIdList,omitempty"`
	ValidationMode         string                 `xml:"validationMode,omitempty" json:"validationMode,omitempty"`
}

type createCustomerPaymentProfileRequest struct {
	XMLName                xml.Name               `xml:"AnetApi/xml/v1/schema/AnetApiSchema.xsd createCustomerPaymentProfileRequest" json:"-"`
	MerchantAuthentication merchantAuthentication `xml:"merchantAuthentication" json:"merchantAuthentication"`
	CustomerProfileID      string                 `xml:"customerProfileId" json:"customerProfileId"`
	PaymentProfile         cimPaymentProfile      `xml:"paymentProfile" json:"paymentProfile"`
	ExistingProfiles       *existingProfileIDs    `xml:"existingPaymentProfileIdList,omitempty" json:"existingPaymentProfileIdList,omitempty"`
	ValidationMode         string                 `xml:"validationMode,omitempty" json:"validationMode,omitempty"`
}

type updateCustomerPaymentProfileRequest struct {
	XMLName                xml.Name               `xml:"AnetApi/xml/v1/schema/AnetApiSchema.xsd updateCustomerPaymentProfileRequest" json:"-"`
	MerchantAuthentication merchantAuthentication `xml:"merchantAuthentication" json:"merchantAuthentication"`
	CustomerProfileID      string                 `xml:"customerProfileId" json:"customerProfileId"`
	PaymentProfile         cimPaymentProfile      `xml:"paymentProfile" json:"paymentProfile"`
	ValidationMode         string                 `xml:"validationMode,omitempty" json:"validationMode,omitempty"`
}

type deleteCustomerPaymentProfileRequest struct {
	XMLName                  xml.Name               `xml:"AnetApi/xml/v1/schema/AnetApiSchema.xsd deleteCustomerPaymentProfileRequest" json:"-"`
	MerchantAuthentication   merchantAuthentication `xml:"merchantAuthentication" json:"merchantAuthentication"`
	CustomerProfileID        string                 `xml:"customerProfileId" json:"customerProfileId"`
	CustomerPaymentProfileID string                 `xml:"customerPaymentProfileId" json:"customerPaymentProfileId"`
}

type cimOrder struct {
	InvoiceNumber string `xml:"invoiceNumber,omitempty" json:"invoiceNumber,omitempty"`
}

// cimProfileTransaction holds the fields of every profileTrans* element; each
// kind leaves the ones it does not use empty.
type cimProfileTransaction struct {
	Amount                   string    `xml:"amount,omitempty" json:"amount,omitempty"`
	CustomerProfileID        string    `xml:"customerProfileId" json:"customerProfileId"`
	CustomerPaymentProfileID string    `xml:"customerPaymentProfileId" json:"customerPaymentProfileId"`
	CreditCardNumberMasked   string    `xml:"creditCardNumberMasked,omitempty" json:"creditCardNumberMasked,omitempty"`
	BankRoutingNumberMasked  string    `xml:"bankRoutingNumberMasked,omitempty" json:"bankRoutingNumberMasked,omitempty"`
	BankAccountNumberMasked  string    `xml:"bankAccountNumberMasked,omitempty" json:"bankAccountNumberMasked,omitempty"`
	Order                    *cimOrder `xml:"order,omitempty" json:"order,omitempty"`
	TransID                  string    `xml:"transId,omitempty" json:"transId,omitempty"`
}

type cimTransaction struct {
	AuthCapture      *cimProfileTransaction `xml:"profileTransAuthCapture,omitempty" json:"profileTransAuthCapture,omitempty"`
	PriorAuthCapture *cimProfileTransaction `xml:"profileTransPriorAuthCapture,omitempty" json:"profileTransPriorAuthCapture,omitempty"`
	Refund           *cimProfileTransaction `xml:"profileTransRefund,omitempty" json:"profileTransRefund,omitempty"`
	Void             *cimProfileTransaction `xml:"profileTransVoid,omitempty" json:"profileTransVoid,omitempty"`
}

type createCustomerProfileTransactionRequest struct {
	XMLName                xml.Name               `xml:"AnetApi/xml/v1/schema/AnetApiSchema.xsd createCustomerProfileTransactionRequest" json:"-"`
	MerchantAuthentication merchantAuthentication `xml:"merchantAuthentication" json:"merchantAuthentication"`
	Transaction            cimTransaction         `xml:"transaction" json:"transaction"`
	ExtraOptions           string                 `xml:"extraOptions,omitempty" json:"extraOptions,omitempty"`
}

type cimMessage struct {
	Code string `xml:"code"`
	Text string `xml:"text"`
}

// cimResponse covers every response document the adapter reads. The root
// element differs per request and is not checked.
type cimResponse struct {
	Messages struct {
		ResultCode string       `xml:"resultCode"`
		Message    []cimMessage `xml:"message"`
	} `xml:"messages"`
	CustomerProfileID            string   `xml:"customerProfileId"`
	CustomerPaymentProfileID     string   `xml:"customerPaymentProfileId"`
	CustomerPaymentProfileIDList []string `xml:"customerPaymentProfileIdList>numericString"`
	DirectResponse               string   `xml:"directResponse"`
	ValidationDirectResponse     string   `xml:"validationDirectResponse"`
	ValidationDirectResponseList []string `xml:"validationDirectResponseList>string"`
}

// ok reports whether the processor accepted the request
func (r *cimResponse) ok() bool {
	return r.Messages.ResultCode == "Ok"
}

// message returns the first message, if any
func (r *cimResponse) message() cimMessage {
	if len(r.Messages.Message) == 0 {
		return cimMessage{}
	}
	return r.Messages.Message[0]
}

// paymentProfileID returns the account reference from either response form
func (r *cimResponse) paymentProfileID() string {
	if r.CustomerPaymentProfileID != "" {
		return r.CustomerPaymentProfileID
	}
	if len(r.CustomerPaymentProfileIDList) > 0 {
		return r.CustomerPaymentProfileIDList[0]
	}
	return ""
}

// validationResponse returns the embedded validation response, if any
func (r *cimResponse) validationResponse() string {
	if r.ValidationDirectResponse != "" {
		return r.ValidationDirectResponse
	}
	if len(r.ValidationDirectResponseList) > 0 {
		return r.ValidationDirectResponseList[0]
	}
	return ""
}

// fields returns the response for an audit payload
func (r *cimResponse) fields() map[string]any {
	msg := r.message()
	fields := map[string]any{
		"resultCode": r.Messages.ResultCode,
		"code":       msg.Code,
		"text":       msg.Text,
	}
	if r.CustomerProfileID != "" {
		fields["customerProfileId"] = r.CustomerProfileID
	}
	if id := r.paymentProfileID(); id != "" {
		fields["customerPaymentProfileId"] = id
	}
	if r.DirectResponse != "" {
		if dr, err := ParseDirectResponse(r.DirectResponse, DelimChar); err == nil {
			fields["directResponse"] = dr.Fields()
		}
	}
	return fields
}
