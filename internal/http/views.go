package http

import (
	"encoding/json"
	"time"

	"dompet/internal/core"
	"dompet/internal/period"
	"dompet/internal/services"
)

// Amounts are rendered as decimal strings with two places so clients never
// see floating point values.

type statsView struct {
	TotalIncome      string `json:"total_income"`
	TotalExpense     string `json:"total_expense"`
	Net              string `json:"net"`
	TransactionCount int    `json:"transaction_count"`
}

type periodView struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	StartDate  string     `json:"start_date"`
	EndDate    string     `json:"end_date"`
	IsActive   bool       `json:"is_active"`
	Stats      statsView  `json:"stats"`
	ExportedAt *time.Time `json:"exported_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type transactionView struct {
	ID         int64     `json:"id"`
	PeriodID   *int64    `json:"period_id"`
	CategoryID *int64    `json:"category_id"`
	Name       string    `json:"name"`
	Amount     string    `json:"amount"`
	Date       string    `json:"date"`
	Kind       string    `json:"kind"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type archivedTransactionView struct {
	ID                int64     `json:"id"`
	PeriodID          int64     `json:"period_id"`
	CategoryID        *int64    `json:"category_id"`
	Name              string    `json:"name"`
	Amount            string    `json:"amount"`
	Date              string    `json:"date"`
	Kind              string    `json:"kind"`
	OriginalCreatedAt time.Time `json:"original_created_at"`
	ArchivedAt        time.Time `json:"archived_at"`
}

type settingsView struct {
	PaydayDay    int    `json:"payday_day"`
	AutoArchive  bool   `json:"auto_archive"`
	NamingFormat string `json:"naming_format"`
	Locale       string `json:"locale"`
}

type dashboardView struct {
	CurrentPeriod      periodView        `json:"current_period"`
	PreviousPeriods    []periodView      `json:"previous_periods"`
	AllTime            statsView         `json:"all_time"`
	RecentTransactions []transactionView `json:"recent_transactions"`
}

type resetView struct {
	ArchivedPeriod *periodView `json:"archived_period"`
	CurrentPeriod  periodView  `json:"current_period"`
}

type periodDetailView struct {
	Period       periodView                `json:"period"`
	Transactions []archivedTransactionView `json:"transactions"`
}

type activePeriodView struct {
	Period       periodView        `json:"period"`
	Transactions []transactionView `json:"transactions"`
}

func newStatsView(s core.PeriodStats) statsView {
	return statsView{
		TotalIncome:      s.Income.String(),
		TotalExpense:     s.Expense.String(),
		Net:              core.CentsString(s.Net),
		TransactionCount: s.Count,
	}
}

func newPeriodView(p core.Period) periodView {
	return periodView{
		ID:         p.ID,
		Name:       p.Name,
		StartDate:  p.StartDate.String(),
		EndDate:    p.EndDate.String(),
		IsActive:   p.IsActive,
		Stats:      newStatsView(p.Stats),
		ExportedAt: p.ExportedAt,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func newPeriodViews(ps []core.Period) []periodView {
	out := make([]periodView, 0, len(ps))
	for _, p := range ps {
		out = append(out, newPeriodView(p))
	}
	return out
}

func newTransactionView(t core.Transaction) transactionView {
	return transactionView{
		ID:         t.ID,
		PeriodID:   t.PeriodID,
		CategoryID: t.CategoryID,
		Name:       t.Name,
		Amount:     t.Amount.String(),
		Date:       t.Date.String(),
		Kind:       string(t.Kind),
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

func newTransactionViews(txs []core.Transaction) []transactionView {
	out := make([]transactionView, 0, len(txs))
	for _, t := range txs {
		out = append(out, newTransactionView(t))
	}
	return out
}

func newArchivedTransactionViews(txs []core.ArchivedTransaction) []archivedTransactionView {
	out := make([]archivedTransactionView, 0, len(txs))
	for _, t := range txs {
		out = append(out, archivedTransactionView{
			ID:                t.ID,
			PeriodID:          t.PeriodID,
			CategoryID:        t.CategoryID,
			Name:              t.Name,
			Amount:            t.Amount.String(),
			Date:              t.Date.String(),
			Kind:              string(t.Kind),
			OriginalCreatedAt: t.OriginalCreatedAt,
			ArchivedAt:        t.ArchivedAt,
		})
	}
	return out
}

func newSettingsView(s core.UserSettings) settingsView {
	return settingsView{
		PaydayDay:    s.PaydayDay,
		AutoArchive:  s.AutoArchive,
		NamingFormat: string(s.NamingFormat),
		Locale:       s.Locale,
	}
}

func newDashboardView(d services.Dashboard) dashboardView {
	return dashboardView{
		CurrentPeriod:      newPeriodView(d.Current),
		PreviousPeriods:    newPeriodViews(d.Previous),
		AllTime:            newStatsView(d.AllTime),
		RecentTransactions: newTransactionViews(d.Recent),
	}
}

func newResetView(r period.ResetResult) resetView {
	v := resetView{CurrentPeriod: newPeriodView(r.Current)}
	if r.Archived != nil {
		archived := newPeriodView(*r.Archived)
		v.ArchivedPeriod = &archived
	}
	return v
}

// amountField accepts a JSON number or a string such as "12,50".
type amountField string

func (a *amountField) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = amountField(n.String())
	return nil
}

// transactionRequest is the body of POST /api/transactions and
// PUT /api/transactions/{id}.
type transactionRequest struct {
	Name       string      `json:"name"`
	Amount     amountField `json:"amount"`
	Date       string      `json:"date"`
	Kind       string      `json:"kind"`
	CategoryID *int64      `json:"category_id"`
}

func (req transactionRequest) input() (services.TransactionInput, error) {
	amount, err := core.ParseMoney(string(req.Amount))
	if err != nil {
		return services.TransactionInput{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return services.TransactionInput{}, err
	}
	return services.TransactionInput{
		Name:       sanitizeInput(req.Name),
		Amount:     amount,
		Date:       date,
		Kind:       core.Kind(sanitizeInput(req.Kind)),
		CategoryID: req.CategoryID,
	}, nil
}

type resetRequest struct {
	StartDate string `json:"start_date"`
}

type settingsRequest struct {
	PaydayDay    *int    `json:"payday_day"`
	AutoArchive  *bool   `json:"auto_archive"`
	NamingFormat *string `json:"naming_format"`
	Locale       *string `json:"locale"`
}

func (req settingsRequest) update() services.SettingsUpdate {
	u := services.SettingsUpdate{
		PaydayDay:   req.PaydayDay,
		AutoArchive: req.AutoArchive,
		Locale:      req.Locale,
	}
	if req.NamingFormat != nil {
		f := core.NamingFormat(*req.NamingFormat)
		u.NamingFormat = &f
	}
	return u
}
