package security

import (
	"fmt"
	"net/url"
	"reflect"
)

// MaskPlaceholder replaces every redacted value
const MaskPlaceholder = "****"

// MaskRule redacts every occurrence of Field at any depth of a record.
// KeepSuffix > 0 (or < 0, same meaning) reveals that many trailing characters
// after the placeholder; zero redacts the value completely.
type MaskRule struct {
	Field      string
	KeepSuffix int
}

// DefaultMaskRules covers the direct (AIM) and profile (CIM) request fields
// that carry credentials or account data. Only the login id keeps its last
// four characters.
func DefaultMaskRules() []MaskRule {
	return []MaskRule{
		// direct API
		{Field: "x_login", KeepSuffix: 4},
		{Field: "x_tran_key"},
		{Field: "x_card_num"},
		{Field: "x_exp_date"},
		{Field: "x_card_code"},
		{Field: "x_bank_aba_code"},
		{Field: "x_bank_acct_num"},
		// profile API
		{Field: "name"},
		{Field: "transactionKey"},
		{Field: "cardNumber"},
		{Field: "expirationDate"},
		{Field: "cardCode"},
		{Field: "routingNumber"},
		{Field: "accountNumber"},
	}
}

// Mask returns a deep copy of record with every rule applied. Every leaf
// under a matched key is redacted, including leaves of nested containers.
// The input is never modified.
func Mask(record map[string]any, rules []MaskRule) map[string]any {
	if record == nil {
		return nil
	}
	index := make(map[string]MaskRule, len(rules))
	for _, r := range rules {
		index[r.Field] = r
	}
	return maskMap(record, nil, index)
}

// MaskValues masks form-encoded fields. Single-valued keys become strings,
// repeated keys become []string.
func MaskValues(values url.Values, rules []MaskRule) map[string]any {
	record := make(map[string]any, len(values))
	for k, v := range values {
		if len(v) == 1 {
			record[k] = v[0]
			continue
		}
		record[k] = append([]string(nil), v...)
	}
	return Mask(record, rules)
}

// MaskString redacts a single value per the KeepSuffix convention of MaskRule.
// Values no longer than the kept suffix are redacted completely.
func MaskString(value string, keepSuffix int) string {
	if value == "" {
		return ""
	}
	n := keepSuffix
	if n < 0 {
		n = -n
	}
	if n == 0 || len(value) <= n {
		return MaskPlaceholder
	}
	return MaskPlaceholder + value[len(value)-n:]
}

func maskMap(m map[string]any, rule *MaskRule, rules map[string]MaskRule) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = maskValue(v, ruleFor(k, rule, rules), rules)
	}
	return out
}

// ruleFor returns the rule matching key, or the rule inherited from an
// enclosing matched key.
func ruleFor(key string, inherited *MaskRule, rules map[string]MaskRule) *MaskRule {
	if r, ok := rules[key]; ok {
		return &r
	}
	return inherited
}

// maskValue returns a deep copy of v. Under a matched key (rule != nil)
// every leaf is redacted, however deeply it is nested.
func maskValue(v any, rule *MaskRule, rules map[string]MaskRule) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if rule == nil {
			return val
		}
		return MaskString(val, rule.KeepSuffix)
	case map[string]any:
		return maskMap(val, rule, rules)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = maskValue(item, rule, rules)
		}
		return out
	}
	return maskReflect(reflect.ValueOf(v), rule, rules).Interface()
}

// maskReflect handles the typed containers (url.Values, map[string]string,
// []map[string]string, pointers, arrays) the fast paths above do not.
// Struct values are treated as leaves.
func maskReflect(rv reflect.Value, rule *MaskRule, rules map[string]MaskRule) reflect.Value {
	switch rv.Kind() {
	case reflect.String:
		if rule == nil {
			return rv
		}
		return reflect.ValueOf(MaskString(rv.String(), rule.KeepSuffix)).Convert(rv.Type())

	case reflect.Map:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		elem := rv.Type().Elem()
		iter := rv.MapRange()
		for iter.Next() {
			elemRule := rule
			if iter.Key().Kind() == reflect.String {
				elemRule = ruleFor(iter.Key().String(), rule, rules)
			}
			out.SetMapIndex(iter.Key(), maskElem(iter.Value(), elemRule, rules, elem))
		}
		return out

	case reflect.Slice:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(maskElem(rv.Index(i), rule, rules, rv.Type().Elem()))
		}
		return out

	case reflect.Array:
		out := reflect.New(rv.Type()).Elem()
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(maskElem(rv.Index(i), rule, rules, rv.Type().Elem()))
		}
		return out

	case reflect.Pointer:
		if rv.IsNil() {
			return rv
		}
		out := reflect.New(rv.Type().Elem())
		out.Elem().Set(maskElem(rv.Elem(), rule, rules, rv.Type().Elem()))
		return out

	case reflect.Struct:
		if rule == nil {
			return rv
		}
		return reflect.ValueOf(MaskPlaceholder)

	default:
		if rule == nil || !rv.CanInterface() {
			return rv
		}
		return reflect.ValueOf(MaskString(fmt.Sprint(rv.Interface()), rule.KeepSuffix))
	}
}

// maskElem masks one container element and fits the result back into a slot
// of type t. A redacted value that no longer fits (a masked number in an int
// slot) becomes the zero value.
func maskElem(v reflect.Value, rule *MaskRule, rules map[string]MaskRule, t reflect.Type) reflect.Value {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Zero(t)
		}
		v = v.Elem()
	}
	if !v.CanInterface() {
		return reflect.Zero(t)
	}

	masked := maskValue(v.Interface(), rule, rules)
	if masked == nil {
		return reflect.Zero(t)
	}
	out := reflect.ValueOf(masked)
	switch {
	case out.Type().AssignableTo(t):
		return out
	case out.Kind() == reflect.String && t.Kind() == reflect.String:
		return out.Convert(t)
	default:
		return reflect.Zero(t)
	}
}
