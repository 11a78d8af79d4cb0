package medicover

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// fakePortal emulates the parts of the patient portal the client talks to:
// the home page with the login token, the login endpoint, the form model,
// the slot search and the booking confirmation flow.
type fakePortal struct {
	t      *testing.T
	server *httptest.Server

	token    string
	user     string
	password string

	// loginCalls records the posted login payloads.
	loginCalls []url.Values
	// formResponses are served in order on FormModel calls; the last one
	// repeats once exhausted.
	formResponses []string
	formCalls     []url.Values
	formCookies   []bool

	// visitResponses are served in order on slot searches.
	visitResponses []string
	visitCalls     []url.Values

	confirmHTML   string
	bookingPosts  []url.Values
	bookingStatus int
}

func newFakePortal(t *testing.T) *fakePortal {
	p := &fakePortal{
		t:             t,
		token:         "test-verification-token",
		formResponses: []string{`{"canSearch": false}`},
		bookingStatus: http.StatusOK,
	}
	p.server = httptest.NewServer(http.HandlerFunc(p.handle))
	t.Cleanup(p.server.Close)
	return p
}

func (p *fakePortal) handle(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Requested-With") != "XMLHttpRequest" {
		p.t.Errorf("missing X-Requested-With header on %s %s", r.Method, r.URL.Path)
	}
	if r.Header.Get("User-Agent") == "" {
		p.t.Errorf("missing User-Agent header on %s %s", r.Method, r.URL.Path)
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/":
		fmt.Fprintf(w, `<html><body><form action="/Users/Account/LogOn">`+
			`<input name="__RequestVerificationToken" type="hidden" value="%s"/>`+
			`</form></body></html>`, p.token)

	case r.Method == http.MethodPost && r.URL.Path == "/Users/Account/LogOn":
		r.ParseForm()
		p.loginCalls = append(p.loginCalls, r.PostForm)
		if r.PostFormValue("userNameOrEmail") != p.user ||
			r.PostFormValue("password") != p.password ||
			r.PostFormValue("__RequestVerificationToken") != p.token {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "authenticated", Path: "/"})
		w.Header().Set("Location", "/")
		w.WriteHeader(http.StatusFound)

	case r.Method == http.MethodGet && r.URL.Path == "/api/MyVisits/SearchFreeSlotsToBook/FormModel":
		p.formCalls = append(p.formCalls, r.URL.Query())
		_, err := r.Cookie("session")
		p.formCookies = append(p.formCookies, err == nil)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, p.nextResponse(&p.formResponses))

	case r.Method == http.MethodPost && r.URL.Path == "/api/MyVisits/SearchFreeSlotsToBook":
		r.ParseForm()
		p.visitCalls = append(p.visitCalls, r.PostForm)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, p.nextResponse(&p.visitResponses))

	case r.Method == http.MethodGet && r.URL.Path == "/MyVisits/BookingAppointmentProcess/Confirm":
		fmt.Fprint(w, p.confirmHTML)

	case r.Method == http.MethodPost && r.URL.Path == "/MyVisits/BookingAppointmentProcess/Confirm":
		r.ParseForm()
		p.bookingPosts = append(p.bookingPosts, r.PostForm)
		w.WriteHeader(p.bookingStatus)

	default:
		p.t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func (p *fakePortal) nextResponse(responses *[]string) string {
	if len(*responses) == 0 {
		return `{"items": []}`
	}
	response := (*responses)[0]
	if len(*responses) > 1 {
		*responses = (*responses)[1:]
	}
	return response
}

func visitJSON(id int, date string) string {
	return fmt.Sprintf(`{"id": %d, "doctorName": "Dr %d", "specializationName": "Internista", `+
		`"clinicName": "CM Centrum", "appointmentDate": %q}`, id, id, date)
}

func visitsResponse(visits ...string) string {
	return `{"items": [` + strings.Join(visits, ", ") + `]}`
}
