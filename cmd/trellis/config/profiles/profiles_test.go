package profiles_test

import (
	"encoding/base64"
	"errors"
	"testing"

	prof "github.com/trellis-ml/trellis/cmd/trellis/config/profiles"
)

func TestConfig(t *testing.T) {
	t.Run("unmarshalling works well", func(t *testing.T) {
		conf, err := prof.Unmarshall([]byte(`
profname:
    apiRoot: "https://api.example.com"
    token: "TOKEN"
    cert:
        ca: BASE64_ENCODED_CERT
`))
		if err != nil {
			t.Fatalf("failed to unmarshal.: %+v", err)
		}
		p, ok := conf["profname"]
		if !ok {
			t.Fatal("config has not profile")
		}

		expectedApiRoot := "https://api.example.com"
		if p.ApiRoot != expectedApiRoot {
			t.Errorf("prof.ApiRoot unmatch. (actual, expected) = (%s, %s)", p.ApiRoot, expectedApiRoot)
		}

		expectedToken := "TOKEN"
		if p.Token != expectedToken {
			t.Errorf("prof.Token unmatch. (actual, expected) = (%s, %s)", p.Token, expectedToken)
		}

		expectedCACert := "BASE64_ENCODED_CERT"
		if p.Cert.CA != expectedCACert {
			t.Errorf("prof.Cert.CA unmatch. (actual, expected) = (%v, %v)", p.Cert.CA, expectedCACert)
		}
	})
}

func TestTrellisProfile(t *testing.T) {
	t.Run("verify profile", func(t *testing.T) {
		pemCert := `-----BEGIN CERTIFICATE-----
MIIBhTCCASugAwIBAgIQIRi6zePL6mKjOipn+dNuaTAKBggqhkjOPQQDAjASMRAw
DgYDVQQKEwdBY21lIENvMB4XDTE3MTAyMDE5NDMwNloXDTE4MTAyMDE5NDMwNlow
EjEQMA4GA1UEChMHQWNtZSBDbzBZMBMGByqGSM49AgEGCCqGSM49AwEHA0IABD0d
7VNhbWvZLWPuj/RtHFjvtJBEwOkhbN/BnnE8rnZR8+sbwnc/KhCk3FhnpHZnQz7B
5aETbbIgmuvewdjvSBSjYzBhMA4GA1UdDwEB/wQEAwICpDATBgNVHSUEDDAKBggr
BgEFBQcDATAPBgNVHRMBAf8EBTADAQH/MCkGA1UdEQQiMCCCDmxvY2FsaG9zdDo1
NDUzgg4xMjcuMC4wLjE6NTQ1MzAKBggqhkjOPQQDAgNIADBFAiEA2zpJEPQyz6/l
Wf86aX6PepsntZv2GYlA5UpabfT2EZICICpJ5h/iI+i341gBmLiAFQOyTDT+/wQc
6MF9+Yw1Yy0t
-----END CERTIFICATE-----
`

		for name, testcase := range map[string]struct {
			prof      *prof.TrellisProfile
			toBeValid error
		}{
			"all value is valid, it is valid": {
				prof: &prof.TrellisProfile{
					ApiRoot: "https://api.example.com",
					Token:   "TOKEN",
					Cert: prof.TrellisCert{
						CA: base64.StdEncoding.EncodeToString([]byte(pemCert)),
					},
				},
				toBeValid: nil,
			},
			"no CA cert is ok": {
				prof: &prof.TrellisProfile{
					ApiRoot: "https://api.example.com",
					Token:   "TOKEN",
					Cert:    prof.TrellisCert{CA: ""},
				},
				toBeValid: nil,
			},
			"when api url is broken, it is not valid": {
				prof: &prof.TrellisProfile{
					ApiRoot: "not url",
					Token:   "TOKEN",
				},
				toBeValid: prof.ErrProfileInvalid,
			},
			"when token is empty, it is not valid": {
				prof: &prof.TrellisProfile{
					ApiRoot: "https://api.example.com",
				},
				toBeValid: prof.ErrProfileInvalid,
			},
			"when CA cert is not PEM, it is not valid": {
				prof: &prof.TrellisProfile{
					ApiRoot: "https://api.example.com",
					Token:   "TOKEN",
					Cert: prof.TrellisCert{
						CA: base64.StdEncoding.EncodeToString([]byte("broken cert")),
					},
				},
				toBeValid: prof.ErrProfileInvalid,
			},
		} {
			t.Run(name, func(t *testing.T) {
				if !errors.Is(testcase.prof.Verify(), testcase.toBeValid) {
					t.Errorf(
						"profile verification wrong. toBeValid?(=%v) content = %+v",
						testcase.toBeValid, testcase.prof,
					)
				}
			})
		}
	})
}
