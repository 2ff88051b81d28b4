package accounts

import (
	"regexp"
	"strings"
)

// UnknownBank is reported for accounts whose bank code is not recognised.
const UnknownBank = "Unknown Bank"

// czechBankCodes maps 4-digit Czech bank codes to bank names.
var czechBankCodes = map[string]string{
	"0100": "Komerční banka",
	"0300": "ČSOB",
	"0600": "MONETA Money Bank",
	"0710": "ČNB",
	"0800": "Česká spořitelna",
	"2010": "Fio banka",
	"2250": "Revolut Bank",
	"2600": "Citibank",
	"2700": "UniCredit Bank",
	"3030": "Air Bank",
	"5500": "Raiffeisenbank",
	"6210": "mBank",
}

var bankCodeSuffix = regexp.MustCompile(`/(\d{4})$`)

// IdentifyBank names the bank of a domestic Czech account ("123/0800") or a
// CZ IBAN. It returns "" for an empty number and UnknownBank otherwise.
func IdentifyBank(number string) string {
	number = strings.TrimSpace(number)
	if number == "" {
		return ""
	}
	if m := bankCodeSuffix.FindStringSubmatch(number); m != nil {
		return bankName(m[1])
	}
	if iban := strings.ToUpper(strings.ReplaceAll(number, " ", "")); strings.HasPrefix(iban, "CZ") && len(iban) >= 8 {
		return bankName(iban[4:8])
	}
	return UnknownBank
}

func bankName(code string) string {
	if name, ok := czechBankCodes[code]; ok {
		return name
	}
	return UnknownBank
}
