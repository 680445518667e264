package domain

import (
	"bytes"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ============================================================
// Records
// ============================================================

// Ownership is the supervising chain a record belongs to: the owning
// territory sales associate and the TSM and manager above them.
type Ownership struct {
	ReferenceID string
	TSM         string
	Manager     string
}

// Record is implemented by every collection row the filter engine handles.
type Record interface {
	Ownership() Ownership
	ClientType() string
	Status() string
	CreatedAt() Timestamp
}

// AccountRecord is a company account.
type AccountRecord struct {
	ID            string    `json:"id,omitempty"`
	CompanyName   string    `json:"companyname"`
	ReferenceID   string    `json:"referenceid"`
	TSM           string    `json:"tsm"`
	Manager       string    `json:"manager"`
	TypeClient    string    `json:"typeclient"`
	AccountStatus string    `json:"status"`
	DateCreated   Timestamp `json:"date_created"`
	ContactPerson string    `json:"contactperson,omitempty"`
	ContactNumber string    `json:"contactnumber,omitempty"`
	EmailAddress  string    `json:"emailaddress,omitempty"`
	Address       string    `json:"address,omitempty"`
	Area          string    `json:"area,omitempty"`
}

func (a AccountRecord) Ownership() Ownership {
	return Ownership{ReferenceID: a.ReferenceID, TSM: a.TSM, Manager: a.Manager}
}
func (a AccountRecord) ClientType() string   { return a.TypeClient }
func (a AccountRecord) Status() string       { return a.AccountStatus }
func (a AccountRecord) CreatedAt() Timestamp { return a.DateCreated }

// In pins the record's floating dates to loc.
func (a AccountRecord) In(loc *time.Location) AccountRecord {
	a.DateCreated = a.DateCreated.In(loc)
	return a
}

// ActivityRecord is one interaction log entry.
type ActivityRecord struct {
	ID              string    `json:"id,omitempty"`
	ActivityNumber  string    `json:"activitynumber,omitempty"`
	CompanyName     string    `json:"companyname"`
	ReferenceID     string    `json:"referenceid"`
	TSM             string    `json:"tsm"`
	Manager         string    `json:"manager"`
	TypeClient      string    `json:"typeclient"`
	TypeActivity    string    `json:"typeactivity"`
	ActivityStatus  string    `json:"activitystatus"`
	TypeCall        string    `json:"typecall,omitempty"`
	Callback        Timestamp `json:"callback"`
	StartDate       Timestamp `json:"startdate"`
	EndDate         Timestamp `json:"enddate"`
	DateCreated     Timestamp `json:"date_created"`
	Remarks         string    `json:"remarks,omitempty"`
	QuotationNumber string    `json:"quotationnumber,omitempty"`
	QuotationAmount Amount    `json:"quotationamount"`
	SONumber        string    `json:"sonumber,omitempty"`
	SOAmount        Amount    `json:"soamount"`
}

func (a ActivityRecord) Ownership() Ownership {
	return Ownership{ReferenceID: a.ReferenceID, TSM: a.TSM, Manager: a.Manager}
}
func (a ActivityRecord) ClientType() string   { return a.TypeClient }
func (a ActivityRecord) Status() string       { return a.ActivityStatus }
func (a ActivityRecord) CreatedAt() Timestamp { return a.DateCreated }

// In pins the record's floating dates to loc.
func (a ActivityRecord) In(loc *time.Location) ActivityRecord {
	a.Callback = a.Callback.In(loc)
	a.StartDate = a.StartDate.In(loc)
	a.EndDate = a.EndDate.In(loc)
	a.DateCreated = a.DateCreated.In(loc)
	return a
}

// Key is the upstream identity of the activity: its id, or the activity
// number when the id is missing.
func (a ActivityRecord) Key() string {
	if a.ID != "" {
		return a.ID
	}
	return a.ActivityNumber
}

var notificationSpace = uuid.MustParse("5b0e3c1a-4f7d-4f0e-9a53-2d1c6f8b7e10")

// NotificationID identifies the activity's callback notification. Records
// without an upstream key get a stable id derived from owner, company and
// callback instant.
func (a ActivityRecord) NotificationID() string {
	if k := a.Key(); k != "" {
		return k
	}
	name := a.ReferenceID + "|" + strings.ToLower(strings.TrimSpace(a.CompanyName))
	if a.Callback.Valid {
		name += "|" + a.Callback.Time.UTC().Format(time.RFC3339)
	}
	return uuid.NewSHA1(notificationSpace, []byte(name)).String()
}

// IsCall reports whether the activity is an inbound or outbound call.
func (a ActivityRecord) IsCall() bool {
	switch strings.ToLower(strings.TrimSpace(a.TypeActivity)) {
	case "outbound call", "inbound call":
		return true
	}
	return false
}

// ============================================================
// Activity statuses
// ============================================================

// Sales-funnel statuses.
const (
	StatusCold      = "Cold"
	StatusWarm      = "Warm"
	StatusHot       = "Hot"
	StatusDone      = "Done"
	StatusLoss      = "Loss"
	StatusCancelled = "Cancelled"
)

// FunnelStatuses are the sales-funnel activity statuses.
var FunnelStatuses = []string{StatusCold, StatusWarm, StatusHot, StatusDone, StatusLoss, StatusCancelled}

// PersonalStatuses are the non-sales "personal activity" statuses. They never
// overlap with FunnelStatuses.
var PersonalStatuses = []string{
	"Break",
	"Lunch Break",
	"Coffee Break",
	"Meeting",
	"Client Visit",
	"Admin Task",
	"Training",
	"Personal",
}

// IsFunnelStatus reports whether s is a sales-funnel status.
func IsFunnelStatus(s string) bool { return containsFold(FunnelStatuses, s) }

// IsPersonalStatus reports whether s is a personal-activity status.
func IsPersonalStatus(s string) bool { return containsFold(PersonalStatuses, s) }

func containsFold(set []string, s string) bool {
	s = strings.TrimSpace(s)
	for _, v := range set {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// ============================================================
// Amount
// ============================================================

// Amount is a monetary value that upstream sends as a number, a numeric
// string, an empty string or null. Unparseable values decode as zero.
type Amount struct {
	decimal.Decimal
}

// UnmarshalJSON decodes leniently.
func (a *Amount) UnmarshalJSON(data []byte) error {
	a.Decimal = decimal.Zero
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if d, ok := ParseAmount(strings.Trim(string(data), `"`)); ok {
		a.Decimal = d
	}
	return nil
}

// ParseAmount reads a decimal amount, allowing thousands separators
// ("1,000.50"). An empty string is not an amount.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// MarshalJSON writes the amount as a JSON string with two decimals.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.Decimal.StringFixed(2) + `"`), nil
}
