// Package sapclient is the session-cookie-authenticated REST client for the
// Service Layer: login/logout, paginated delivery-note retrieval, the
// idempotency lookup and invoice creation.
package sapclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rezonia/invoice-autotransfer/internal/model"
)

// PageSize is the fixed $top value for delivery-note pages. A page shorter
// than this signals end of data.
const PageSize = 10

// Config holds client configuration
type Config struct {
	Host               string
	Username           string
	Password           string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Client talks to one Service Layer host. Safe for concurrent use; sessions
// are values passed per call, never stored on the client.
type Client struct {
	host     string
	username string
	password string
	http     *http.Client
	log      *logrus.Logger
}

// New creates a new Service Layer client
func New(cfg Config, log *logrus.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	transport := &http.Transport{}
	if cfg.InsecureSkipVerify {
		// Service Layer installations commonly run on self-signed certs.
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &Client{
		host:     strings.TrimRight(cfg.Host, "/"),
		username: cfg.Username,
		password: cfg.Password,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		log: log,
	}
}

// Login opens a session for the given company database.
func (c *Client) Login(ctx context.Context, companyDB string) (model.Session, error) {
	body, err := c.do(ctx, http.MethodPost, c.host+"/Login", "", loginRequest{
		CompanyDB: companyDB,
		UserName:  c.username,
		Password:  c.password,
	})
	if err != nil {
		return model.Session{}, model.NewAuthError(companyDB, err)
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.Session{}, model.NewAuthError(companyDB, err)
	}
	if resp.SessionID == "" {
		return model.Session{}, model.NewAuthError(companyDB, fmt.Errorf("login response carried no session id"))
	}

	c.log.WithFields(logrus.Fields{
		"company": companyDB,
		"version": resp.Version,
	}).Info("service layer session opened")

	return model.Session{
		CompanyDB: companyDB,
		ID:        resp.SessionID,
		Version:   resp.Version,
		Timeout:   resp.SessionTimeout,
		IssuedAt:  time.Now(),
	}, nil
}

// Logout closes the session. Best-effort: failures are logged by the caller,
// never escalated past it.
func (c *Client) Logout(ctx context.Context, sess model.Session) error {
	_, err := c.do(ctx, http.MethodPost, c.host+"/Logout", sess.ID, struct{}{})
	return err
}

// DeliveryNotes fetches one page of open, unaudited delivery notes dated
// strictly before the given day, optionally scoped to a card-code subset.
func (c *Client) DeliveryNotes(ctx context.Context, sess model.Session, cardCodes []string, before time.Time, page int) ([]model.DeliveryNote, error) {
	predicate := fmt.Sprintf(
		"DocumentStatus eq 'bost_Open' and U_Auto_Auditoria eq 'N' and DocDate lt '%s'",
		before.Format("2006-01-02"),
	)
	if len(cardCodes) > 0 {
		clauses := make([]string, 0, len(cardCodes))
		for _, code := range cardCodes {
			clauses = append(clauses, fmt.Sprintf("CardCode eq '%s'", code))
		}
		predicate = fmt.Sprintf("(%s) and (%s)", predicate, strings.Join(clauses, " or "))
	}

	q := url.Values{}
	q.Set("$filter", predicate)
	q.Set("$orderby", "DocEntry")
	q.Set("$top", fmt.Sprint(PageSize))
	q.Set("$skip", fmt.Sprint(page*PageSize))

	body, err := c.do(ctx, http.MethodGet, c.host+"/DeliveryNotes?"+q.Encode(), sess.ID, nil)
	if err != nil {
		return nil, model.NewFetchError(sess.CompanyDB, page, err)
	}

	var resp deliveryNotePage
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, model.NewFetchError(sess.CompanyDB, page, err)
	}

	notes := make([]model.DeliveryNote, 0, len(resp.Value))
	for _, dto := range resp.Value {
		notes = append(notes, dto.toModel())
	}
	return notes, nil
}

// InvoiceExistsForBase reports whether an invoice already links back to the
// given delivery-note entry.
func (c *Client) InvoiceExistsForBase(ctx context.Context, sess model.Session, baseEntry int) (bool, error) {
	q := url.Values{}
	q.Set("$filter", fmt.Sprintf("BaseEntry eq %d and BaseType eq %d", baseEntry, model.BaseTypeDeliveryNote))
	q.Set("$top", "1")

	body, err := c.do(ctx, http.MethodGet, c.host+"/Invoices?"+q.Encode(), sess.ID, nil)
	if err != nil {
		return false, err
	}

	var resp invoicePage
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, err
	}
	return len(resp.Value) > 0, nil
}

// CreateInvoice submits the invoice and returns the created document entry.
func (c *Client) CreateInvoice(ctx context.Context, sess model.Session, req model.InvoiceRequest) (int, error) {
	body, err := c.do(ctx, http.MethodPost, c.host+"/Invoices", sess.ID, toInvoiceDTO(req))
	if err != nil {
		return 0, err
	}

	var resp createInvoiceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, err
	}
	return resp.DocEntry, nil
}

// do performs one request and returns the response body, or a *RemoteError
// for non-2xx responses.
func (c *Client) do(ctx context.Context, method, rawURL, sessionID string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.Header.Set("Cookie", "B1SESSION="+sessionID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseRemoteError(resp.StatusCode, body)
	}
	return body, nil
}
