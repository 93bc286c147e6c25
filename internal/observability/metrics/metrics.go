package metrics

import "github.com/prometheus/client_golang/prometheus"

// FollowUpMetrics exposes counters for follow-up state transitions.
type FollowUpMetrics struct {
	transitionsTotal *prometheus.CounterVec
}

func NewFollowUpMetrics(reg prometheus.Registerer) *FollowUpMetrics {
	m := &FollowUpMetrics{
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salesdesk",
			Subsystem: "followup",
			Name:      "transitions_total",
			Help:      "Total follow-up transitions by action and outcome",
		}, []string{"action", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.transitionsTotal)
	return m
}

func (m *FollowUpMetrics) ObserveTransition(action string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.transitionsTotal.WithLabelValues(action, status).Inc()
}

// LeaderboardMetrics tracks cache behaviour on the standings path.
type LeaderboardMetrics struct {
	cacheTotal *prometheus.CounterVec
}

func NewLeaderboardMetrics(reg prometheus.Registerer) *LeaderboardMetrics {
	m := &LeaderboardMetrics{
		cacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salesdesk",
			Subsystem: "leaderboard",
			Name:      "cache_total",
			Help:      "Leaderboard cache lookups by result",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.cacheTotal)
	return m
}

func (m *LeaderboardMetrics) ObserveCache(result string) {
	if m == nil {
		return
	}
	m.cacheTotal.WithLabelValues(result).Inc()
}

// ReminderMetrics counts overdue-digest runs and emails.
type ReminderMetrics struct {
	digestsTotal *prometheus.CounterVec
	emailsTotal  *prometheus.CounterVec
}

func NewReminderMetrics(reg prometheus.Registerer) *ReminderMetrics {
	m := &ReminderMetrics{
		digestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salesdesk",
			Subsystem: "reminders",
			Name:      "digest_runs_total",
			Help:      "Overdue digest runs by outcome",
		}, []string{"status"}),
		emailsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salesdesk",
			Subsystem: "reminders",
			Name:      "digest_emails_total",
			Help:      "Digest emails sent by outcome",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.digestsTotal, m.emailsTotal)
	return m
}

func (m *ReminderMetrics) ObserveDigestRun(err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.digestsTotal.WithLabelValues(status).Inc()
}

func (m *ReminderMetrics) ObserveEmail(err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.emailsTotal.WithLabelValues(status).Inc()
}
