package models

// Requests for report HTTP endpoints. Defined in domain for consistency and reuse.

type RegimesRequest struct {
	From string `query:"from" json:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
	N    int    `query:"n" json:"n" default:"0" validate:"gte=0,lte=20000"`
}

type EpisodesRequest struct {
	Regime string `query:"regime" json:"regime" validate:"omitempty,oneof=risk_off_crisis policy_pivot late_cycle risk_on_expansion transition"`
	MinLen int    `query:"min_len" json:"min_len" default:"1" validate:"gte=1,lte=10000"`
}

type ScorecardRequest struct {
	Window string `query:"window" json:"window" validate:"omitempty,max=80"`
}

type HistoryRequest struct {
	From string `query:"from" json:"from" validate:"required,datetime=2006-01-02"`
	To   string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
}
