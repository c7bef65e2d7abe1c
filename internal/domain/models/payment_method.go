package models

import "fmt"

// MethodKind distinguishes cards from bank accounts
type MethodKind string

const (
	MethodKindCard MethodKind = "cc"
	MethodKindACH  MethodKind = "ach"
)

// PaymentMethod is the tagged union of what a caller can charge:
// CardDetails, BankAccount or StoredPaymentMethodHandle.
type PaymentMethod interface {
	paymentMethod()
	Kind() MethodKind
}

// Address is a billing address
type Address struct {
	Line1   string
	Line2   string
	City    string
	State   string
	Zip     string
	Country string
}

// Contact describes the owner of a stored payment method
type Contact struct {
	ContactID string
	ClientID  string
	FirstName string
	LastName  string
	Company   string
	Email     string
	Address   Address
}

// CardDetails is raw card data
type CardDetails struct {
	FirstName    string
	LastName     string
	CardNumber   string
	Expiry       string // YYYYMM
	SecurityCode string
	Address      Address
}

func (CardDetails) paymentMethod() {}

// Kind implements PaymentMethod
func (CardDetails) Kind() MethodKind { return MethodKindCard }

// ExpirationDate converts the YYYYMM expiry into the processor's YYYY-MM form
func (c CardDetails) ExpirationDate() (string, error) {
	if len(c.Expiry) != 6 {
		return "", fmt.Errorf("expiry %q is not in YYYYMM form", c.Expiry)
	}
	for _, r := range c.Expiry {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("expiry %q is not in YYYYMM form", c.Expiry)
		}
	}
	return c.Expiry[:4] + "-" + c.Expiry[4:], nil
}

// StoredPaymentMethodHandle identifies a payment method stored with the
// processor. One client profile may own many accounts.
type StoredPaymentMethodHandle struct {
	ClientReferenceID  string
	AccountReferenceID string
	MethodKind         MethodKind
}

func (StoredPaymentMethodHandle) paymentMethod() {}

// Kind implements PaymentMethod
func (h StoredPaymentMethodHandle) Kind() MethodKind { return h.MethodKind }

// LastFour returns the trailing four characters of s, or s itself when shorter
func LastFour(s string) string {
	if len(s) <= 4 {
		return s
	}
	return s[len(s)-4:]
}
