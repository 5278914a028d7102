package models

import "time"

// SignatureLayout is the local wall-clock convention used to stamp signatures.
const SignatureLayout = "01/02/2006 3:04 PM"

// Stage is a step of the canvassing workflow.
type Stage string

const (
	StagePRReceived     Stage = "pr_received"
	StageBACResolution  Stage = "bac_resolution"
	StageReleaseCanvass Stage = "release_canvass"
	StageCollectCanvass Stage = "collect_canvass"
	StageAAAPreparation Stage = "aaa_preparation"
)

// Stages lists the workflow steps in their fixed order.
var Stages = []Stage{
	StagePRReceived,
	StageBACResolution,
	StageReleaseCanvass,
	StageCollectCanvass,
	StageAAAPreparation,
}

// Index returns the position of the stage in Stages, or -1 when unknown.
func (s Stage) Index() int {
	for i, stage := range Stages {
		if stage == s {
			return i
		}
	}
	return -1
}

// Signatory is one named entry of a signature roster.
type Signatory struct {
	Name     string `bson:"name" json:"name"`
	Role     string `bson:"role" json:"role"`
	Signed   bool   `bson:"signed" json:"signed"`
	SignedAt string `bson:"signed_at,omitempty" json:"signed_at,omitempty"`
}

// DivisionStatus tracks a canvass form handed to a division.
type DivisionStatus string

const (
	DivisionPending  DivisionStatus = "pending"
	DivisionReleased DivisionStatus = "released"
	DivisionReturned DivisionStatus = "returned"
)

// DivisionAssignment records the canvasser of one division and the release
// and return dates of its canvass form.
type DivisionAssignment struct {
	Division   string         `bson:"division" json:"division"`
	Canvasser  string         `bson:"canvasser" json:"canvasser"`
	Status     DivisionStatus `bson:"status" json:"status"`
	ReleasedAt *time.Time     `bson:"released_at,omitempty" json:"released_at,omitempty"`
	ReturnedAt *time.Time     `bson:"returned_at,omitempty" json:"returned_at,omitempty"`
	DueAt      *time.Time     `bson:"due_at,omitempty" json:"due_at,omitempty"`
}

// SupplierQuote holds one supplier's prices keyed by line item ID. Prices are
// kept exactly as entered; parsing happens when awards are computed.
type SupplierQuote struct {
	SupplierID   string         `bson:"supplier_id" json:"supplier_id" binding:"required"`
	SupplierName string         `bson:"supplier_name" json:"supplier_name"`
	Address      string         `bson:"address,omitempty" json:"address,omitempty"`
	Contact      string         `bson:"contact,omitempty" json:"contact,omitempty"`
	TIN          string         `bson:"tin,omitempty" json:"tin,omitempty"`
	Prices       map[int]string `bson:"prices" json:"prices"`
}

// SessionSummary is emitted when the abstract of awards is fully signed.
type SessionSummary struct {
	ID              string          `bson:"_id" json:"id"`
	PRRefNo         string          `bson:"pr_ref_no" json:"pr_ref_no"`
	CanvassRefNo    string          `bson:"canvass_ref_no" json:"canvass_ref_no"`
	ResolutionNo    string          `bson:"resolution_no" json:"resolution_no"`
	ProcurementMode string          `bson:"procurement_mode" json:"procurement_mode"`
	AbstractNo      string          `bson:"abstract_no" json:"abstract_no"`
	AwardedSupplier string          `bson:"awarded_supplier" json:"awarded_supplier"`
	AwardedTotal    float64         `bson:"awarded_total" json:"awarded_total"`
	Quotes          []SupplierQuote `bson:"quotes" json:"quotes"`
	Signatories     []Signatory     `bson:"signatories" json:"signatories"`
	CompletedAt     time.Time       `bson:"completed_at" json:"completed_at"`
}
