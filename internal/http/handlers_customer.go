package http

import (
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"mfdist/internal/core"
	"mfdist/internal/dashboard"
	applog "mfdist/internal/log"
	"mfdist/internal/session"
)

type customersPage struct {
	Active string
	Form   dashboard.CustomerForm
}

func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.handleCustomersPage(w, r)
	case http.MethodPost:
		s.handleSubmitCustomer(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

// handleCustomersPage shows the form and, when this visitor already
// submitted, the summary of that submission.
func (s *Server) handleCustomersPage(w http.ResponseWriter, r *http.Request) {
	form := dashboard.NewCustomerForm(s.catalog)
	sess, err := s.session(w, r)
	if err != nil {
		s.events.LogError(r.Context(), "Session unavailable", err, applog.ComponentSession, applog.OpRead, nil)
	} else if sess.LastCustomer != nil {
		form.Submitted = sess.LastCustomer
	}
	s.renderPage(w, r, NewHTMXResponse(), "customers.html", customersPage{Active: "customers", Form: form})
}

func (s *Server) handleSubmitCustomer(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	form := dashboard.NewCustomerForm(s.catalog)
	c, err := dashboard.ParseCustomer(r.Form, s.now())
	if err == nil && c.PreferredFund != "" {
		if _, lookupErr := s.catalog.Lookup(c.PreferredFund); lookupErr != nil {
			err = fmt.Errorf("%q: %w", c.PreferredFund, core.ErrUnknownFund)
		}
	}
	form.Input = c
	if err != nil {
		form.Error = customerErrorText(err)
		s.respondCustomer(w, r, NewHTMXResponse().Status(http.StatusUnprocessableEntity), form)
		return
	}

	ref := ""
	if s.leads != nil {
		ref, err = s.leads.Append(r.Context(), c)
		if err != nil {
			atomic.AddInt64(&s.appMetrics.leadErrors, 1)
			s.events.LogError(r.Context(), "Failed to store lead", err, applog.ComponentLeads, applog.OpSubmit, nil)
			form.Error = "Your details could not be saved. Please try again."
			s.respondCustomer(w, r, NewHTMXResponse().Status(http.StatusInternalServerError), form)
			return
		}
	}

	if sess, err := s.session(w, r); err == nil {
		last := c
		_, err = s.sessions.Update(r.Context(), sess.ID, func(stored *session.Session) error {
			stored.LastCustomer = &last
			return nil
		})
		if err != nil {
			s.events.LogError(r.Context(), "Failed to remember submission", err, applog.ComponentSession, applog.OpSubmit,
				applog.NewFields().WithSessionID(sess.ID))
		}
	}

	atomic.AddInt64(&s.appMetrics.leadsSubmitted, 1)
	s.events.LogLeadSubmitted(r.Context(), ref, c.PreferredFund, c.Amount)

	form.Banner = dashboard.SubmittedBanner(c.Name)
	form.Submitted = &c
	s.respondCustomer(w, r, NewHTMXResponse().TriggerLeadSubmitted(ref), form)
}

// respondCustomer renders the result fragment for htmx and the whole page otherwise.
func (s *Server) respondCustomer(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder, form dashboard.CustomerForm) {
	if IsHTMX(r) {
		s.renderPage(w, r, b, "customer_result", form)
		return
	}
	s.renderPage(w, r, b, "customers.html", customersPage{Active: "customers", Form: form})
}

func customerErrorText(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "Investment amount must be a number."
	case errors.Is(err, core.ErrFieldTooLong):
		return "Each field must be at most 200 characters."
	case errors.Is(err, core.ErrUnknownFund):
		return "Please choose one of the listed funds."
	default:
		return "Invalid details."
	}
}
