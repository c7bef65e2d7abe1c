package models

import (
	"fmt"
	"strings"
)

// ACHAccountType represents the type of bank account
type ACHAccountType string

const (
	AccountTypeChecking         ACHAccountType = "checking"
	AccountTypeSavings          ACHAccountType = "savings"
	AccountTypeBusinessChecking ACHAccountType = "business_checking"
)

// achReferenceSeparator joins the account and routing fragments of an ACH
// gateway reference.
const achReferenceSeparator = ":"

// BankAccount is raw bank account data for a direct ACH debit or for storing
// a bank account profile.
type BankAccount struct {
	FirstName     string
	LastName      string
	AccountNumber string
	RoutingNumber string
	AccountType   ACHAccountType
	BankName      string
	Address       Address
}

func (BankAccount) paymentMethod() {}

// Kind implements PaymentMethod
func (BankAccount) Kind() MethodKind { return MethodKindACH }

// GatewayReference returns the gateway-only reference for this account:
// the last four digits of the account and routing numbers.
func (b BankAccount) GatewayReference() string {
	return ACHGatewayReference(b.AccountNumber, b.RoutingNumber)
}

// ACHGatewayReference builds "acct4:rtn4" from full account and routing numbers
func ACHGatewayReference(accountNumber, routingNumber string) string {
	return LastFour(accountNumber) + achReferenceSeparator + LastFour(routingNumber)
}

// ParseACHGatewayReference splits a reference built by ACHGatewayReference
// back into its account and routing fragments.
func ParseACHGatewayReference(reference string) (accountLast4, routingLast4 string, err error) {
	parts := strings.Split(reference, achReferenceSeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed ACH gateway reference %q", reference)
	}
	return parts[0], parts[1], nil
}
