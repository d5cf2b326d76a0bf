// Package iettapi is a minimal client for the IETT (Istanbul public
// transit authority) SOAP web services. Only the planned-departure
// service is wrapped; responses embed JSON inside the SOAP envelope.
package iettapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public endpoint of the planned-departure service.
	DefaultBaseURL = "https://api.ibb.gov.tr/iett/UlasimAnaVeri/PlanlananSeferSaati.asmx"

	soapMethod = "GetPlanlananSeferSaati_json"
	soapNS     = "http://tempuri.org/"
)

type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

func New(baseURL, username, password string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:  baseURL,
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// ScheduleRow is one planned departure as returned by the authority.
type ScheduleRow struct {
	RouteCode     string `json:"SHATKODU"`
	RouteName     string `json:"HATADI"`
	RoutePath     string `json:"SGUZERGAH"`
	DirectionCode string `json:"SYON"`      // "G" outbound, "D" inbound
	DayTypeCode   string `json:"SGUNTIPI"`  // "I" weekday, "C" Saturday, "P" Sunday
	DepartureTime string `json:"DT"`        // HH:MM
	VariantMarker string `json:"GUZERGAH_ISARETI"` // optional routing variant tag
}

// PlannedDepartures fetches every planned departure row for a route code.
func (c *Client) PlannedDepartures(ctx context.Context, routeCode string) ([]ScheduleRow, error) {
	envelope := c.buildEnvelope(routeCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(envelope))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml;charset=UTF-8")
	req.Header.Set("SOAPAction", soapNS+soapMethod)
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	payload, err := extractResult(string(body), soapMethod+"Result")
	if err != nil {
		return nil, err
	}

	var rows []ScheduleRow
	if err := json.Unmarshal([]byte(payload), &rows); err != nil {
		return nil, fmt.Errorf("decoding schedule rows: %w", err)
	}
	return rows, nil
}

func (c *Client) buildEnvelope(routeCode string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	b.WriteString(`<soap:Envelope xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:xsd="http://www.w3.org/2001/XMLSchema" xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">`)
	b.WriteString(`<soap:Header><AuthHeader xmlns="` + soapNS + `">`)
	writeElement(&b, "Username", c.username)
	writeElement(&b, "Password", c.password)
	b.WriteString(`</AuthHeader></soap:Header>`)
	b.WriteString(`<soap:Body><` + soapMethod + ` xmlns="` + soapNS + `">`)
	writeElement(&b, "HatKodu", routeCode)
	b.WriteString(`</` + soapMethod + `></soap:Body></soap:Envelope>`)
	return b.String()
}

func writeElement(b *strings.Builder, tag, value string) {
	b.WriteString("<" + tag + ">")
	b.WriteString(escapeXML(value))
	b.WriteString("</" + tag + ">")
}

func escapeXML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;")
	return r.Replace(s)
}

// extractResult pulls the inner payload out of the SOAP response without a
// full XML parse; the service nests JSON text inside a single result element.
func extractResult(body, resultTag string) (string, error) {
	openTag := "<" + resultTag + ">"
	closeTag := "</" + resultTag + ">"

	start := strings.Index(body, openTag)
	if start < 0 {
		return "", fmt.Errorf("result element %s missing from SOAP response", resultTag)
	}
	start += len(openTag)
	end := strings.Index(body[start:], closeTag)
	if end < 0 {
		return "", fmt.Errorf("result element %s not terminated in SOAP response", resultTag)
	}
	return body[start : start+end], nil
}
