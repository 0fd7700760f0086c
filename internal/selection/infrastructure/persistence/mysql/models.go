package mysql

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wyfcoding/optionselector/internal/selection/domain"
)

// SelectionModel 选择结果数据库模型。完整的请求与结果以 JSON 存档，
// 常用查询维度（标的、最佳行权价、总分等）展开为独立列。
type SelectionModel struct {
	gorm.Model
	ID             string    `gorm:"column:id;type:varchar(36);primaryKey"`
	Symbol         string    `gorm:"column:symbol;type:varchar(32);index;not null"`
	SpotPrice      string    `gorm:"column:spot_price;type:decimal(20,8)"`
	Bias           string    `gorm:"column:bias;type:varchar(10);not null"`
	ATMStrike      string    `gorm:"column:atm_strike;type:decimal(20,8)"`
	NoCandidate    bool      `gorm:"column:no_candidate"`
	Reason         string    `gorm:"column:reason;type:varchar(64)"`
	BestStrike     string    `gorm:"column:best_strike;type:decimal(20,8)"`
	BestOptionType string    `gorm:"column:best_option_type;type:varchar(4)"`
	TotalScore     string    `gorm:"column:total_score;type:decimal(10,6)"`
	RequestJSON    string    `gorm:"column:request;type:text"`
	ResultJSON     string    `gorm:"column:result;type:mediumtext"`
	EvaluatedAt    time.Time `gorm:"column:evaluated_at;index"`
}

func (SelectionModel) TableName() string { return "selection_results" }

func toSelectionModel(record *domain.SelectionRecord) (*SelectionModel, error) {
	if record == nil {
		return nil, nil
	}

	requestJSON, err := json.Marshal(record.Request)
	if err != nil {
		return nil, err
	}
	resultJSON, err := json.Marshal(record.Result)
	if err != nil {
		return nil, err
	}

	model := &SelectionModel{
		ID:          record.ID,
		Symbol:      record.Symbol,
		SpotPrice:   decimal.NewFromFloat(record.Request.SpotPrice).String(),
		Bias:        string(record.Request.Bias),
		ATMStrike:   decimal.NewFromFloat(record.Result.ATMStrike).String(),
		NoCandidate: record.Result.NoCandidate,
		Reason:      string(record.Result.Reason),
		BestStrike:  decimal.Zero.String(),
		TotalScore:  decimal.Zero.String(),
		RequestJSON: string(requestJSON),
		ResultJSON:  string(resultJSON),
		EvaluatedAt: record.EvaluatedAt,
	}
	if best := record.Result.Best; best != nil {
		model.BestStrike = decimal.NewFromFloat(best.Candidate.Strike).String()
		model.BestOptionType = string(best.Candidate.OptionType)
		model.TotalScore = decimal.NewFromFloat(best.Score.TotalScore).String()
	}
	return model, nil
}

// toSelectionRecord 从 JSON 存档重建完整记录；展开列仅服务于 SQL 查询
func toSelectionRecord(m *SelectionModel) (*domain.SelectionRecord, error) {
	if m == nil {
		return nil, nil
	}

	record := &domain.SelectionRecord{
		ID:          m.ID,
		Symbol:      m.Symbol,
		EvaluatedAt: m.EvaluatedAt,
	}
	if err := json.Unmarshal([]byte(m.RequestJSON), &record.Request); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(m.ResultJSON), &record.Result); err != nil {
		return nil, err
	}
	return record, nil
}
