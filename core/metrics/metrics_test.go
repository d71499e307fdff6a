package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	m := &dto.Metric{}
	if err := cv.WithLabelValues(labels...).Write(m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func getCounter(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func TestRecordUpdate(t *testing.T) {
	before := getCounterValue(UpdatesTotal, "support", "ok")
	RecordUpdate("support", "ok", 20*time.Millisecond)
	if got := getCounterValue(UpdatesTotal, "support", "ok"); got != before+1 {
		t.Fatalf("updates = %v, want %v", got, before+1)
	}
}

func TestRecordAnswerLabels(t *testing.T) {
	before := getCounterValue(AnswersTotal, "2", "locked")
	RecordAnswer(2, "locked")
	RecordAnswer(1, "captured")
	if got := getCounterValue(AnswersTotal, "2", "locked"); got != before+1 {
		t.Fatalf("answers = %v, want %v", got, before+1)
	}
}

func TestRecordRegistrationAndTickets(t *testing.T) {
	reg := getCounterValue(RegistrationsTotal, "registered")
	ref := getCounterValue(RegistrationsTotal, "refreshed")
	RecordRegistration(true)
	RecordRegistration(false)
	if getCounterValue(RegistrationsTotal, "registered") != reg+1 || getCounterValue(RegistrationsTotal, "refreshed") != ref+1 {
		t.Fatal("registration outcomes not recorded")
	}

	tickets := getCounter(TicketsTotal)
	RecordTicket()
	if getCounter(TicketsTotal) != tickets+1 {
		t.Fatal("ticket not recorded")
	}

	fail := getCounterValue(NotificationsTotal, "ticket", "fail")
	RecordNotification("ticket", errors.New("blocked"))
	if getCounterValue(NotificationsTotal, "ticket", "fail") != fail+1 {
		t.Fatal("notification failure not recorded")
	}
}

func TestServerExposesMetrics(t *testing.T) {
	RecordHandlerError("panic")
	srv, err := Start("127.0.0.1:0", "/metrics")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer srv.Shutdown(context.Background())

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `adventbot_handler_errors_total{kind="panic"}`) {
		t.Fatalf("metric missing from scrape:\n%s", body)
	}
}
