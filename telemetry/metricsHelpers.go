package telemetry

// Increments the created counter for a record kind ("request" or "transaction").
func IncRecordsCreated(kind string) {
	recordsCreatedTotal.WithLabelValues(kind).Inc()
}

// Increments the validated counter for a record kind.
func IncRecordsValidated(kind string) {
	recordsValidatedTotal.WithLabelValues(kind).Inc()
}

// Increments the rejected counter for a record kind.
func IncRecordsRejected(kind string) {
	recordsRejectedTotal.WithLabelValues(kind).Inc()
}

// IncTransactionsClosed increments the close counter.
func IncTransactionsClosed() {
	transactionsClosedTotal.Inc()
}

// IncAuditPublished increments the audit success counter.
func IncAuditPublished() {
	auditPublishedTotal.Inc()
}

// Increments the audit failure counter.
// Reasons: "schema", "kafka", "dropped".
func IncAuditFailed(reason string) {
	auditFailedTotal.WithLabelValues(reason).Inc()
}

// Sets the current audit queue size gauge.
func SetAuditQueueCurrent(n int) {
	auditQueueCurrent.Set(float64(n))
}

// IncUsersCreated increments the account creation counter.
func IncUsersCreated() {
	usersCreatedTotal.Inc()
}

// Increments the failed-create counter with a bounded reason.
func IncUsersCreateFailed(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	usersCreateFailedTotal.WithLabelValues(reason).Inc()
}

// Increments the login counter labeled by outcome.
func IncLogins(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	loginsTotal.WithLabelValues(outcome).Inc()
}
