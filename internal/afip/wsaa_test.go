package afip

import (
	"context"
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTRA(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	raw, err := buildTRA(now)
	require.NoError(t, err)

	var tra loginTicketRequest
	require.NoError(t, xml.Unmarshal(raw, &tra))
	assert.Equal(t, "1.0", tra.Version)
	assert.Equal(t, now.Unix(), tra.UniqueID)
	assert.Equal(t, "wsfe", tra.Service)

	gen, err := time.Parse(time.RFC3339, tra.GenerationTime)
	require.NoError(t, err)
	exp, err := time.Parse(time.RFC3339, tra.ExpirationTime)
	require.NoError(t, err)
	assert.True(t, gen.Before(now), "generation time is backdated")
	assert.True(t, exp.After(now), "expiration time is in the future")
}

// The ticket arrives XML-escaped inside loginCmsReturn.
const loginCmsOKXML = `<?xml version="1.0" encoding="utf-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <loginCmsResponse xmlns="https://wsaa.view.sua.dnet.afip.gov.ar">
      <loginCmsReturn>&lt;loginTicketResponse version="1.0"&gt;&lt;header&gt;&lt;expirationTime&gt;2026-08-30T23:59:59-03:00&lt;/expirationTime&gt;&lt;/header&gt;&lt;credentials&gt;&lt;token&gt;TOKEN123&lt;/token&gt;&lt;sign&gt;SIGN456&lt;/sign&gt;&lt;/credentials&gt;&lt;/loginTicketResponse&gt;</loginCmsReturn>
    </loginCmsResponse>
  </soapenv:Body>
</soapenv:Envelope>`

func TestLoginCmsParsesTicket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		w.Write([]byte(loginCmsOKXML))
	}))
	defer srv.Close()

	s, err := loginCms(context.Background(), srv.Client(), srv.URL, "ZmFrZS1jbXM=")
	require.NoError(t, err)
	assert.Equal(t, "TOKEN123", s.Token)
	assert.Equal(t, "SIGN456", s.Sign)
	assert.Equal(t, 2026, s.Expiry.Year())
	assert.True(t, s.Valid(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)))
}

func TestLoginCmsSoapFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "soap fault: CMS firmado invalido", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := loginCms(context.Background(), srv.Client(), srv.URL, "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
