package afip

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	wsfeURLTest = "https://wswhomo.afip.gov.ar/wsfev1/service.asmx"
	wsfeURLProd = "https://servicios1.afip.gov.ar/wsfev1/service.asmx"

	soapActionLastVoucher = "http://ar.gov.afip.dif.FEV1/FECompUltimoAutorizado"
	soapActionRequestCAE  = "http://ar.gov.afip.dif.FEV1/FECAESolicitar"
)

const lastVoucherEnvelope = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:ar="http://ar.gov.afip.dif.FEV1/">
   <soapenv:Header/>
   <soapenv:Body>
      <ar:FECompUltimoAutorizado>
         <ar:Auth>
            <ar:Token>%s</ar:Token>
            <ar:Sign>%s</ar:Sign>
            <ar:Cuit>%s</ar:Cuit>
         </ar:Auth>
         <ar:PtoVta>%d</ar:PtoVta>
         <ar:CbteTipo>%d</ar:CbteTipo>
      </ar:FECompUltimoAutorizado>
   </soapenv:Body>
</soapenv:Envelope>`

type wsfeError struct {
	Code int    `xml:"Code"`
	Msg  string `xml:"Msg"`
}

type lastVoucherResponse struct {
	XMLName xml.Name `xml:"Envelope"`
	Result  struct {
		CbteNro int64       `xml:"CbteNro"`
		Errors  []wsfeError `xml:"Errors>Err"`
	} `xml:"Body>FECompUltimoAutorizadoResponse>FECompUltimoAutorizadoResult"`
}

const caeRequestEnvelope = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:ar="http://ar.gov.afip.dif.FEV1/">
   <soapenv:Header/>
   <soapenv:Body>
      <ar:FECAESolicitar>
         <ar:Auth>
            <ar:Token>%s</ar:Token>
            <ar:Sign>%s</ar:Sign>
            <ar:Cuit>%s</ar:Cuit>
         </ar:Auth>
         <ar:FeCAEReq>
            <ar:FeCabReq>
               <ar:CantReg>1</ar:CantReg>
               <ar:PtoVta>%d</ar:PtoVta>
               <ar:CbteTipo>%d</ar:CbteTipo>
            </ar:FeCabReq>
            <ar:FeDetReq>
               <ar:FECAEDetRequest>
                  <ar:Concepto>1</ar:Concepto>
                  <ar:DocTipo>%d</ar:DocTipo>
                  <ar:DocNro>%d</ar:DocNro>
                  <ar:CbteDesde>%d</ar:CbteDesde>
                  <ar:CbteHasta>%d</ar:CbteHasta>
                  <ar:CbteFch>%s</ar:CbteFch>
                  <ar:ImpTotal>%s</ar:ImpTotal>
                  <ar:ImpTotConc>0</ar:ImpTotConc>
                  <ar:ImpNeto>%s</ar:ImpNeto>
                  <ar:ImpOpEx>0</ar:ImpOpEx>
                  <ar:ImpTrib>0</ar:ImpTrib>
                  <ar:ImpIVA>%s</ar:ImpIVA>
                  <ar:MonId>PES</ar:MonId>
                  <ar:MonCotiz>1</ar:MonCotiz>
                  <ar:Iva>
                     <ar:AlicIva>
                        <ar:Id>%d</ar:Id>
                        <ar:BaseImp>%s</ar:BaseImp>
                        <ar:Importe>%s</ar:Importe>
                     </ar:AlicIva>
                  </ar:Iva>
               </ar:FECAEDetRequest>
            </ar:FeDetReq>
         </ar:FeCAEReq>
      </ar:FECAESolicitar>
   </soapenv:Body>
</soapenv:Envelope>`

type wsfeObservation struct {
	Code int    `xml:"Code"`
	Msg  string `xml:"Msg"`
}

type caeResponse struct {
	XMLName xml.Name `xml:"Envelope"`
	Result  struct {
		FeCabResp struct {
			Resultado string `xml:"Resultado"`
		} `xml:"FeCabResp"`
		FeDetResp struct {
			Detail struct {
				Resultado     string            `xml:"Resultado"`
				CAE           string            `xml:"CAE"`
				CAEFchVto     string            `xml:"CAEFchVto"`
				Observaciones []wsfeObservation `xml:"Observaciones>Obs"`
			} `xml:"FECAEDetResponse"`
		} `xml:"FeDetResp"`
		Errors []wsfeError `xml:"Errors>Err"`
	} `xml:"Body>FECAESolicitarResponse>FECAESolicitarResult"`
}

func soapPost(ctx context.Context, hc *http.Client, url, action, body string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("afip: create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml")
	req.Header.Set("SOAPAction", action)

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("afip: wsfe unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("afip: read wsfe response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("afip: wsfe returned %d: %s", resp.StatusCode, firstLine(raw))
	}
	return raw, nil
}

func lastVoucher(ctx context.Context, hc *http.Client, url string, s Session, cuit string, ptoVta, cbteTipo int) (int64, error) {
	body := fmt.Sprintf(lastVoucherEnvelope, s.Token, s.Sign, cuit, ptoVta, cbteTipo)
	raw, err := soapPost(ctx, hc, url, soapActionLastVoucher, body)
	if err != nil {
		return 0, err
	}
	var env lastVoucherResponse
	if err := xml.Unmarshal(raw, &env); err != nil {
		return 0, fmt.Errorf("afip: decode last voucher response: %w", err)
	}
	if len(env.Result.Errors) > 0 {
		e := env.Result.Errors[0]
		return 0, fmt.Errorf("afip: last voucher query failed: [%d] %s", e.Code, e.Msg)
	}
	return env.Result.CbteNro, nil
}

// caeOutcome is the parsed authority verdict for one submission.
type caeOutcome struct {
	Approved      bool
	CAE           string
	CAEExpiration time.Time
	Message       string
}

func requestCAE(ctx context.Context, hc *http.Client, url string, s Session, cuit string, req CAERequest, vatRate decimal.Decimal) (caeOutcome, error) {
	net, vat := BackOutVAT(req.Total, vatRate)
	body := fmt.Sprintf(caeRequestEnvelope,
		s.Token, s.Sign, cuit,
		req.PtoVta, req.CbteTipo,
		req.DocTipo, req.DocNro,
		req.CbteNro, req.CbteNro,
		time.Now().Format("20060102"),
		req.Total.StringFixed(2),
		net.StringFixed(2),
		vat.StringFixed(2),
		VATRateID(vatRate),
		net.StringFixed(2),
		vat.StringFixed(2),
	)

	raw, err := soapPost(ctx, hc, url, soapActionRequestCAE, body)
	if err != nil {
		return caeOutcome{}, err
	}

	var env caeResponse
	if err := xml.Unmarshal(raw, &env); err != nil {
		return caeOutcome{}, fmt.Errorf("afip: decode CAE response: %w", err)
	}

	if len(env.Result.Errors) > 0 {
		e := env.Result.Errors[0]
		return caeOutcome{Message: fmt.Sprintf("[%d] %s", e.Code, e.Msg)}, nil
	}

	det := env.Result.FeDetResp.Detail
	if env.Result.FeCabResp.Resultado != "A" {
		msg := "rejected by authority"
		if len(det.Observaciones) > 0 {
			msg = fmt.Sprintf("[%d] %s", det.Observaciones[0].Code, det.Observaciones[0].Msg)
		}
		return caeOutcome{Message: msg}, nil
	}

	expiry, err := time.Parse("20060102", det.CAEFchVto)
	if err != nil {
		return caeOutcome{}, fmt.Errorf("afip: parse CAE expiration %q: %w", det.CAEFchVto, err)
	}
	return caeOutcome{
		Approved:      true,
		CAE:           det.CAE,
		CAEExpiration: expiry,
	}, nil
}
