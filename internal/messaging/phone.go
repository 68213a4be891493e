package messaging

import (
	"strconv"
	"strings"

	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/nyaruka/phonenumbers"
)

// RegionForCountryCode maps a configured calling code such as "+91" to its
// primary region ("IN"). Two-letter region codes are returned upper-cased.
func RegionForCountryCode(countryCode string) string {
	cc := strings.TrimPrefix(strings.TrimSpace(countryCode), "+")
	if n, err := strconv.Atoi(cc); err == nil {
		return phonenumbers.GetRegionCodeForCountryCode(n)
	}
	if len(cc) == 2 {
		return strings.ToUpper(cc)
	}
	return phonenumbers.UNKNOWN_REGION
}

// NormalizePhone returns the number in E.164 form. Numbers without an
// international prefix are read in the region of countryCode; a national
// number already carrying the calling code but no plus is accepted as well.
func NormalizePhone(phone, countryCode string) (string, error) {
	phone = strings.TrimSpace(phone)

	num, err := phonenumbers.Parse(phone, RegionForCountryCode(countryCode))
	if err != nil || !phonenumbers.IsValidNumber(num) {
		if !strings.HasPrefix(phone, "+") {
			if alt, altErr := phonenumbers.Parse("+"+phone, phonenumbers.UNKNOWN_REGION); altErr == nil && phonenumbers.IsValidNumber(alt) {
				return phonenumbers.Format(alt, phonenumbers.E164), nil
			}
		}
		return "", ierr.NewErrorf("invalid phone number %q", phone).
			WithHint("Recipient has no valid phone number").
			WithReportableDetails(map[string]any{"phone": phone, "country_code": countryCode}).
			Mark(ierr.ErrValidation)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
