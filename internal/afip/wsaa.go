package afip

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.mozilla.org/pkcs7"
)

const (
	wsaaURLTest = "https://wsaahomo.afip.gov.ar/ws/services/LoginCms"
	wsaaURLProd = "https://wsaa.afip.gov.ar/ws/services/LoginCms"
)

// loginTicketRequest is the TRA submitted to WSAA. Generation time is
// backdated ten minutes and expiration set ten minutes ahead so moderate
// clock skew between us and the authority never invalidates the ticket.
type loginTicketRequest struct {
	XMLName        xml.Name `xml:"loginTicketRequest"`
	Version        string   `xml:"version,attr"`
	UniqueID       int64    `xml:"header>uniqueId"`
	GenerationTime string   `xml:"header>generationTime"`
	ExpirationTime string   `xml:"header>expirationTime"`
	Service        string   `xml:"service"`
}

func buildTRA(now time.Time) ([]byte, error) {
	tra := loginTicketRequest{
		Version:        "1.0",
		UniqueID:       now.Unix(),
		GenerationTime: now.Add(-10 * time.Minute).Format(time.RFC3339),
		ExpirationTime: now.Add(10 * time.Minute).Format(time.RFC3339),
		Service:        "wsfe",
	}
	body, err := xml.Marshal(tra)
	if err != nil {
		return nil, fmt.Errorf("afip: marshal TRA: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

// signTRA wraps the TRA in a CMS SignedData structure and returns it as
// base64, the format WSAA expects inside the loginCms body.
func signTRA(tra, certPEM, keyPEM []byte) (string, error) {
	certBlock, _ := pem.Decode(certPEM)
	if certBlock == nil {
		return "", fmt.Errorf("afip: certificate is not valid PEM")
	}
	cert, err := x509.ParseCertificate(certBlock.Bytes)
	if err != nil {
		return "", fmt.Errorf("afip: parse certificate: %w", err)
	}

	keyBlock, _ := pem.Decode(keyPEM)
	if keyBlock == nil {
		return "", fmt.Errorf("afip: private key is not valid PEM")
	}
	key, err := parsePrivateKey(keyBlock.Bytes)
	if err != nil {
		return "", fmt.Errorf("afip: parse private key: %w", err)
	}

	signed, err := pkcs7.NewSignedData(tra)
	if err != nil {
		return "", fmt.Errorf("afip: build signed data: %w", err)
	}
	signed.SetDigestAlgorithm(pkcs7.OIDDigestAlgorithmSHA256)
	if err := signed.AddSigner(cert, key, pkcs7.SignerInfoConfig{}); err != nil {
		return "", fmt.Errorf("afip: sign TRA: %w", err)
	}
	der, err := signed.Finish()
	if err != nil {
		return "", fmt.Errorf("afip: finish CMS: %w", err)
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

func parsePrivateKey(der []byte) (*rsa.PrivateKey, error) {
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("unsupported key type %T", parsed)
	}
	return key, nil
}

const loginCmsEnvelope = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:wsaa="http://wsaa.view.sua.dnet.afip.gov.ar/xsd">
   <soapenv:Header/>
   <soapenv:Body>
      <wsaa:loginCms>
         <wsaa:in0>%s</wsaa:in0>
      </wsaa:loginCms>
   </soapenv:Body>
</soapenv:Envelope>`

type loginCmsResponse struct {
	XMLName xml.Name `xml:"Envelope"`
	Return  string   `xml:"Body>loginCmsResponse>loginCmsReturn"`
}

// loginTicketResponse is the inner ticket, delivered XML-escaped inside
// loginCmsReturn.
type loginTicketResponse struct {
	XMLName xml.Name `xml:"loginTicketResponse"`
	Header  struct {
		ExpirationTime string `xml:"expirationTime"`
	} `xml:"header"`
	Credentials struct {
		Token string `xml:"token"`
		Sign  string `xml:"sign"`
	} `xml:"credentials"`
}

// loginCms exchanges the signed TRA for WSAA credentials.
func loginCms(ctx context.Context, hc *http.Client, url, cms string) (Session, error) {
	body := fmt.Sprintf(loginCmsEnvelope, cms)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return Session{}, fmt.Errorf("afip: create login request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml")
	req.Header.Set("SOAPAction", "")

	resp, err := hc.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("afip: wsaa unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Session{}, fmt.Errorf("afip: read wsaa response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Session{}, fmt.Errorf("afip: wsaa returned %d: %s", resp.StatusCode, firstLine(raw))
	}

	var env loginCmsResponse
	if err := xml.Unmarshal(raw, &env); err != nil {
		return Session{}, fmt.Errorf("afip: decode wsaa envelope: %w", err)
	}

	var ticket loginTicketResponse
	if err := xml.Unmarshal([]byte(env.Return), &ticket); err != nil {
		return Session{}, fmt.Errorf("afip: decode login ticket: %w", err)
	}

	expiry, err := time.Parse(time.RFC3339, ticket.Header.ExpirationTime)
	if err != nil {
		return Session{}, fmt.Errorf("afip: parse ticket expiration: %w", err)
	}

	return Session{
		Token:  ticket.Credentials.Token,
		Sign:   ticket.Credentials.Sign,
		Expiry: expiry,
	}, nil
}

func firstLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
