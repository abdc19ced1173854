//go:build integration

package site_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"visawatch/internal/browser"
	"visawatch/internal/calendar"
	"visawatch/internal/site"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const signInHTML = `<html><body>
<form action="/es-cr/niv/groups" method="get">
  <input id="user_email" name="email"><input id="user_password" name="password" type="password">
  <div class="icheckbox">accept</div>
  <input type="submit" name="commit" value="Iniciar sesión">
</form></body></html>`

const groupsHTML = `<html><body><a href="/es-cr/niv/schedule">Continuar</a></body></html>`

const scheduleHTML = `<html><body>
<ul class="accordion">
  <li class="accordion-item">
    <a href="#" onclick="this.parentNode.classList.add('is-active'); document.getElementById('panel').style.display='block'; return false;"><h5>Reprogramar cita</h5></a>
    <div id="panel" style="display:none"><a class="button" href="/es-cr/niv/reschedule">Reprogramar cita</a></div>
  </li>
</ul></body></html>`

const rescheduleHTML = `<html><body>
<form action="/es-cr/niv/appointment" method="get">
  <input type="checkbox" id="confirmed_limit_message" name="ok"><label for="confirmed_limit_message">Yo entiendo</label>
  <input type="submit" name="commit" value="Continuar">
</form></body></html>`

// appointmentHTML renders a two-month jQuery UI style picker. Months and the
// selectable days per month come from the script data.
const appointmentHTML = `<html><body>
<input id="appointments_consulate_appointment_date" onclick="render()">
<div id="ui-datepicker-div"></div>
<script>
var names = ["Enero","Febrero","Marzo","Abril","Mayo","Junio","Julio","Agosto","Septiembre","Octubre","Noviembre","Diciembre"];
var free = {"2025-4": [], "2025-5": [], "2025-6": [12, 20]};
var first = {y: 2025, m: 4};
function group(y, m) {
  var days = free[y + "-" + m] || [];
  var cells = "<td class='ui-datepicker-other-month'>&#xa0;</td>";
  for (var d = 1; d <= 3; d++) { cells += "<td class='ui-state-disabled'><span>" + d + "</span></td>"; }
  days.forEach(function (d) { cells += "<td><a class='ui-state-default' href='#'>" + d + "</a></td>"; });
  return "<div class='ui-datepicker-group'><div class='ui-datepicker-title'>" + names[m-1] + "&nbsp;" + y +
    "</div><table class='ui-datepicker-calendar'><tr>" + cells + "</tr></table></div>";
}
function render() {
  var y2 = first.m === 12 ? first.y + 1 : first.y, m2 = first.m === 12 ? 1 : first.m + 1;
  document.getElementById("ui-datepicker-div").innerHTML =
    "<a class='ui-datepicker-next' onclick='advance()'>Sig</a>" + group(first.y, first.m) + group(y2, m2);
}
function advance() { first = first.m === 12 ? {y: first.y + 1, m: 1} : {y: first.y, m: first.m + 1}; render(); }
</script></body></html>`

func newPortalServer() *httptest.Server {
	pages := map[string]string{
		"/es-cr/niv/users/sign_in": signInHTML,
		"/es-cr/niv/groups":        groupsHTML,
		"/es-cr/niv/schedule":      scheduleHTML,
		"/es-cr/niv/reschedule":    rescheduleHTML,
		"/es-cr/niv/appointment":   appointmentHTML,
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	}))
}

func TestPortal_Workflow_Integration(t *testing.T) {
	ts := newPortalServer()
	defer ts.Close()

	bcfg := browser.DefaultConfig()
	bcfg.Headless = true
	bcfg.Stealth = false
	sm := browser.NewSessionManager(bcfg, zaptest.NewLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()
	defer func() { _ = sm.Shutdown() }()

	require.NoError(t, sm.Start(ctx))
	page, err := sm.Page(ctx)
	require.NoError(t, err)

	portal := site.NewPortal(page, site.Config{
		BaseURL:         ts.URL,
		Locale:          "es-cr",
		ContinueLabel:   "Continuar",
		RescheduleLabel: "Reprogramar cita",
		Email:           "me@example.com",
		Password:        "secret",
		LoginTimeout:    5 * time.Second,
		ElementTimeout:  5 * time.Second,
	}, zaptest.NewLogger(t))

	require.NoError(t, portal.Login(ctx))
	require.NoError(t, portal.GoToAppointments(ctx))

	deadline, err := calendar.NewDeadline(2025, 6, 15)
	require.NoError(t, err)
	walker := calendar.NewWalker(portal, deadline, calendar.WalkerConfig{MaxAttempts: 2, MaxPages: 6}, zaptest.NewLogger(t))

	res, err := walker.Walk(ctx)
	require.NoError(t, err)
	require.Equal(t, calendar.OutcomeMatch, res.Outcome)
	assert.Equal(t, calendar.Date{Year: 2025, Month: time.June, Day: 12}, res.Match.Date)
	assert.Equal(t, 1, res.Pages)
}
