package casefile

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/arrearly/arrearly/pkg/allocation"
	"github.com/arrearly/arrearly/pkg/dependent"
	"github.com/arrearly/arrearly/pkg/money"
	"github.com/arrearly/arrearly/pkg/payment"
	"github.com/arrearly/arrearly/pkg/report"
	"github.com/arrearly/arrearly/pkg/schedule"
	"github.com/arrearly/arrearly/pkg/violation"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const apiDateFormat = "2006-01-02"

// Monetary values cross the API as exact decimal strings, never as JSON
// numbers, so nothing on either side is tempted to read them as floats.
type CaseDTO struct {
	Uid            string         `json:"uid,omitempty"`
	Obligor        string         `json:"obligor"`
	Obligee        string         `json:"obligee"`
	SupportAmount  string         `json:"supportAmount"`
	MedicalAmount  string         `json:"medicalAmount,omitempty"`
	DentalAmount   string         `json:"dentalAmount,omitempty"`
	StartDate      string         `json:"startDate"`
	NotBeforeCourt int            `json:"childrenNotBeforeCourt,omitempty"`
	Dependents     []DependentDTO `json:"dependents"`
	Payments       []PaymentDTO   `json:"payments,omitempty"`
}

type DependentDTO struct {
	Name string `json:"name"`
	DOB  string `json:"dob"`
}

type PaymentDTO struct {
	Date   string `json:"date"`
	Amount string `json:"amount"`
	Source string `json:"source,omitempty"`
}

type DueDTO struct {
	Kind        string `json:"kind"`
	DueDate     string `json:"dueDate"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Note        string `json:"note,omitempty"`
}

type FragmentDTO struct {
	Date    string `json:"date"`
	Applied string `json:"applied"`
	Leaves  string `json:"leaves"`
}

type AnnotatedDueDTO struct {
	DueDTO
	Payments  []FragmentDTO `json:"payments,omitempty"`
	Remaining string        `json:"remaining"`
}

type ComplianceDTO struct {
	Dues           []AnnotatedDueDTO `json:"dues"`
	TotalDue       string            `json:"totalDue"`
	TotalPaid      string            `json:"totalPaid"`
	TotalArrearage string            `json:"totalArrearage"`
}

type ViolationDTO struct {
	Kind        string `json:"kind"`
	DueDate     string `json:"dueDate"`
	Description string `json:"description"`
	Required    string `json:"required"`
	Paid        string `json:"paid"`
	Arrears     string `json:"arrears"`
	Narrative   string `json:"narrative"`
}

type Handler struct {
	service  Service
	renderer *report.CsvRenderer
}

func NewHandler(service Service, renderer *report.CsvRenderer) *Handler {
	return &Handler{service: service, renderer: renderer}
}

func (h *Handler) CreateCase(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new case")
	w.Header().Set("Content-Type", "application/json")

	var dto CaseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c, err := dtoToCase(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.CreateCase(r.Context(), c)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(caseToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) ListCases(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	cases, err := h.service.ListCases(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]CaseDTO, 0, len(cases))
	for _, c := range cases {
		dtos = append(dtos, caseToDTO(c))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) GetCase(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	c, err := h.service.GetCase(r.Context(), mux.Vars(r)["caseUid"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(caseToDTO(c)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) UpdateCase(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	uid := mux.Vars(r)["caseUid"]

	var dto CaseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Uid != "" && dto.Uid != uid {
		http.Error(w, "Case uid in request body does not match URL", http.StatusBadRequest)
		return
	}
	c, err := dtoToCase(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c.Uid = uid

	updated, err := h.service.UpdateCase(r.Context(), c)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(caseToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) DeleteCase(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCase(r.Context(), mux.Vars(r)["caseUid"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordPayments accepts the raw tab-separated payment rows pasted from the
// disbursement agency's site as the request body.
func (h *Handler) RecordPayments(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	payments, err := h.service.RecordPayments(r.Context(), mux.Vars(r)["caseUid"], string(body))
	if err != nil {
		var parseErr *payment.ParseError
		if errors.As(err, &parseErr) {
			http.Error(w, parseErr.Error(), http.StatusBadRequest)
			return
		}
		writeServiceError(w, err)
		return
	}

	dtos := make([]PaymentDTO, 0, len(payments))
	for _, p := range payments {
		dtos = append(dtos, paymentToDTO(p))
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	dues, err := h.service.DueCalendar(r.Context(), mux.Vars(r)["caseUid"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	dtos := make([]DueDTO, 0, len(dues))
	for _, d := range dues {
		dtos = append(dtos, dueToDTO(d))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) GetCompliance(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	compliance, err := h.service.Compliance(r.Context(), mux.Vars(r)["caseUid"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(complianceToDTO(compliance)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) GetComplianceCsv(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.CombinedReport(r.Context(), mux.Vars(r)["caseUid"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	csvData, err := h.renderer.RenderCombined(records)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=compliance.csv")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(csvData)); err != nil {
		log.Errorf("failed to write csv response: %v", err)
	}
}

// GetEnforcementCsv renders the per-due allocation view: each due followed by
// the payment fragments applied to it. This is the exhibit attached to an
// enforcement pleading to substantiate the violation paragraphs.
func (h *Handler) GetEnforcementCsv(w http.ResponseWriter, r *http.Request) {
	compliance, err := h.service.Compliance(r.Context(), mux.Vars(r)["caseUid"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	csvData, err := h.renderer.RenderEnforcement(compliance.Dues)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=enforcement.csv")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(csvData)); err != nil {
		log.Errorf("failed to write csv response: %v", err)
	}
}

func (h *Handler) GetViolations(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	compliance, err := h.service.Compliance(r.Context(), mux.Vars(r)["caseUid"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	dtos := make([]ViolationDTO, 0, len(compliance.Violations))
	for _, v := range compliance.Violations {
		dtos = append(dtos, violationToDTO(v))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrCaseNotFound) {
		http.Error(w, "Case not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func dtoToCase(dto CaseDTO) (Case, error) {
	c := Case{
		Uid:     dto.Uid,
		Obligor: dto.Obligor,
		Obligee: dto.Obligee,
	}

	var err error
	if c.Terms.SupportAmount, err = money.ParseAmount(dto.SupportAmount); err != nil {
		return Case{}, err
	}
	c.Terms.MedicalAmount, err = parseOptionalAmount(dto.MedicalAmount)
	if err != nil {
		return Case{}, err
	}
	c.Terms.DentalAmount, err = parseOptionalAmount(dto.DentalAmount)
	if err != nil {
		return Case{}, err
	}
	if c.Terms.StartDate, err = time.Parse(apiDateFormat, dto.StartDate); err != nil {
		return Case{}, err
	}
	c.Terms.NotBeforeCourt = dto.NotBeforeCourt

	for _, d := range dto.Dependents {
		dob, err := time.Parse(apiDateFormat, d.DOB)
		if err != nil {
			return Case{}, err
		}
		dep, err := dependent.New(d.Name, dob)
		if err != nil {
			return Case{}, err
		}
		c.Dependents = append(c.Dependents, dep)
	}
	return c, nil
}

func parseOptionalAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return money.ParseAmount(s)
}

func caseToDTO(c Case) CaseDTO {
	dto := CaseDTO{
		Uid:            c.Uid,
		Obligor:        c.Obligor,
		Obligee:        c.Obligee,
		SupportAmount:  c.Terms.SupportAmount.String(),
		MedicalAmount:  c.Terms.MedicalAmount.String(),
		DentalAmount:   c.Terms.DentalAmount.String(),
		StartDate:      c.Terms.StartDate.Format(apiDateFormat),
		NotBeforeCourt: c.Terms.NotBeforeCourt,
	}
	for _, d := range c.Dependents {
		dto.Dependents = append(dto.Dependents, DependentDTO{Name: d.Name, DOB: d.DOB.Format(apiDateFormat)})
	}
	for _, p := range c.Payments {
		dto.Payments = append(dto.Payments, paymentToDTO(p))
	}
	return dto
}

func paymentToDTO(p payment.PaymentMade) PaymentDTO {
	return PaymentDTO{
		Date:   p.Date.Format(apiDateFormat),
		Amount: p.Amount.String(),
		Source: p.Source,
	}
}

func dueToDTO(d schedule.AmountDue) DueDTO {
	return DueDTO{
		Kind:        string(d.Kind),
		DueDate:     d.DueDate.Format(apiDateFormat),
		Amount:      d.Amount.String(),
		Description: d.Description,
		Note:        d.Note,
	}
}

func complianceToDTO(c Compliance) ComplianceDTO {
	dto := ComplianceDTO{
		Dues:           make([]AnnotatedDueDTO, 0, len(c.Dues)),
		TotalDue:       c.Totals.TotalDue.String(),
		TotalPaid:      c.Totals.TotalPaid.String(),
		TotalArrearage: c.Totals.TotalArrearage.String(),
	}
	for _, due := range c.Dues {
		annotated := AnnotatedDueDTO{
			DueDTO:    dueToDTO(due.AmountDue),
			Remaining: due.Remaining.String(),
		}
		for _, f := range due.Fragments {
			annotated.Payments = append(annotated.Payments, fragmentToDTO(f))
		}
		dto.Dues = append(dto.Dues, annotated)
	}
	return dto
}

func fragmentToDTO(f allocation.Fragment) FragmentDTO {
	return FragmentDTO{
		Date:    f.Date.Format(apiDateFormat),
		Applied: f.Applied.String(),
		Leaves:  f.Leaves.String(),
	}
}

func violationToDTO(v violation.Violation) ViolationDTO {
	return ViolationDTO{
		Kind:        string(v.Kind),
		DueDate:     v.DueDate.Format(apiDateFormat),
		Description: v.Description,
		Required:    v.Required.String(),
		Paid:        v.Paid.String(),
		Arrears:     v.Arrears.String(),
		Narrative:   v.Narrative(),
	}
}
