package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Case management
	r.HandleFunc("/api/case", deps.CaseHandler.CreateCase).Methods("POST")
	r.HandleFunc("/api/case", deps.CaseHandler.ListCases).Methods("GET")
	r.HandleFunc("/api/case/{caseUid}", deps.CaseHandler.GetCase).Methods("GET")
	r.HandleFunc("/api/case/{caseUid}", deps.CaseHandler.UpdateCase).Methods("PUT")
	r.HandleFunc("/api/case/{caseUid}", deps.CaseHandler.DeleteCase).Methods("DELETE")

	// Payment records (pasted tab-separated agency rows)
	r.HandleFunc("/api/case/{caseUid}/payments", deps.CaseHandler.RecordPayments).Methods("POST")

	// Reconciliation output
	r.HandleFunc("/api/case/{caseUid}/schedule", deps.CaseHandler.GetSchedule).Methods("GET")
	r.HandleFunc("/api/case/{caseUid}/compliance", deps.CaseHandler.GetCompliance).Methods("GET")
	r.HandleFunc("/api/case/{caseUid}/compliance.csv", deps.CaseHandler.GetComplianceCsv).Methods("GET")
	r.HandleFunc("/api/case/{caseUid}/enforcement.csv", deps.CaseHandler.GetEnforcementCsv).Methods("GET")
	r.HandleFunc("/api/case/{caseUid}/violations", deps.CaseHandler.GetViolations).Methods("GET")
}
