package models

import "time"

// NullableRatio is a ratio that may be undefined (division by zero, sign
// change across a growth base). A nil pointer is the "null" marker the
// ratio kernel and downstream consumers propagate, never Inf/NaN.
type NullableRatio = *float64

// RatioSet is the dense record of ~50 ratios for a (company, as_of_date).
type RatioSet struct {
	CompanyID string
	AsOf      time.Time

	Liquidity     LiquidityRatios
	Profitability ProfitabilityRatios
	Leverage      LeverageRatios
	Efficiency    EfficiencyRatios
	MarketValue   MarketValueRatios
	Growth        GrowthRatios
	CashFlow      CashFlowRatios
}

type LiquidityRatios struct {
	CurrentRatio NullableRatio
	QuickRatio   NullableRatio
	CashRatio    NullableRatio
}

type ProfitabilityRatios struct {
	GrossMargin     NullableRatio
	OperatingMargin NullableRatio
	NetMargin       NullableRatio
	ROA             NullableRatio
	ROE             NullableRatio
	ROIC            NullableRatio
}

type LeverageRatios struct {
	DebtToEquity     NullableRatio
	DebtToAssets     NullableRatio
	InterestCoverage NullableRatio
	AltmanZScore     NullableRatio
	BeneishMScore    NullableRatio
	BenfordMAD       NullableRatio // mean absolute deviation from Benford's Law leading-digit frequencies; nil when too few line items
}

type EfficiencyRatios struct {
	AssetTurnover            NullableRatio
	InventoryTurnover        NullableRatio
	ReceivablesTurnover      NullableRatio
	DaysSalesOutstanding     NullableRatio
	DaysInventoryOutstanding NullableRatio
	DaysPayableOutstanding   NullableRatio
}

type MarketValueRatios struct {
	PE            NullableRatio
	PB            NullableRatio
	PS            NullableRatio
	PCF           NullableRatio
	EVEBITDA      NullableRatio
	DividendYield NullableRatio
}

type GrowthRatios struct {
	RevenueCAGR   NullableRatio
	EPSCAGR       NullableRatio
	BookValueCAGR NullableRatio
	FCFCAGR       NullableRatio
	RevenueYoY    NullableRatio
}

type CashFlowRatios struct {
	FCF            NullableRatio
	FCFYield       NullableRatio
	CFOToNIQuality NullableRatio
}

// Direction classifies the slope of a fitted trend.
type Direction string

const (
	StrongImproving Direction = "strong_improving"
	Improving       Direction = "improving"
	Stable          Direction = "stable"
	Declining       Direction = "declining"
	StrongDeclining Direction = "strong_declining"
)

// TrendMetrics is the OLS/CAGR/seasonality summary for one metric series.
type TrendMetrics struct {
	CompanyID  string
	MetricName string
	AsOf       time.Time

	Slope     float64
	Intercept float64
	RSquared  float64
	PValue    float64
	CAGR      NullableRatio
	Direction Direction
	SigFlag   bool

	AnomalyIndices []int
	Seasonal       bool
	SeasonalLag    int

	SMA         map[int]float64
	EMA         map[int]float64
	GoldenCross bool
	DeathCross  bool
}

// ModelID enumerates the eight valuation models.
type ModelID string

const (
	ModelDCF    ModelID = "dcf"
	ModelRIM    ModelID = "rim"
	ModelEVA    ModelID = "eva"
	ModelGraham ModelID = "graham"
	ModelLynch  ModelID = "lynch"
	ModelNCAV   ModelID = "ncav"
	ModelPS     ModelID = "ps"
	ModelPCF    ModelID = "pcf"
)

// AllModels is the canonical ordering used everywhere an [8]float64
// feature or weight array is indexed by model.
var AllModels = [8]ModelID{ModelDCF, ModelRIM, ModelEVA, ModelGraham, ModelLynch, ModelNCAV, ModelPS, ModelPCF}

// Scenario enumerates the three perturbation scenarios.
type Scenario string

const (
	ScenarioBull Scenario = "bull"
	ScenarioBase Scenario = "base"
	ScenarioBear Scenario = "bear"
)

// Diagnostics carries the reason a model result is null, plus any
// intermediate values worth surfacing for audit.
type Diagnostics struct {
	Reason string
	Inputs map[string]float64
}

// ValuationResult is one (model, scenario) outcome; always produced in
// groups of 24 (8 models x 3 scenarios) per request.
type ValuationResult struct {
	CompanyID     string
	AsOf          time.Time
	ModelID       ModelID
	Scenario      Scenario
	FairValue     NullableRatio
	ConfidenceBase float64
	Diagnostics   Diagnostics
	InputsDigest  string
}

// OwnerKind scopes a WeightVector to global, an industry, or a single
// company override.
type OwnerKind string

const (
	OwnerGlobal          OwnerKind = "global"
	OwnerIndustry        OwnerKind = "industry"
	OwnerCompanyOverride OwnerKind = "company-override"
)

// WeightSource records how a WeightVector was produced.
type WeightSource string

const (
	SourceDefault     WeightSource = "default"
	SourceTrained     WeightSource = "trained"
	SourceTransferred WeightSource = "transferred"
	SourceMeta        WeightSource = "meta"
	SourceSmoothed    WeightSource = "smoothed"
)

// DeployState is the lifecycle stage of a WeightVector.
type DeployState string

const (
	DeployCandidate DeployState = "candidate"
	DeployShadow    DeployState = "shadow"
	DeployActive    DeployState = "active"
	DeployRetired   DeployState = "retired"
)

// TrainingMetrics records the quality signals produced during training,
// used to compute ml_confidence per the harmonised formula.
type TrainingMetrics struct {
	TrainMAPE    float64
	BacktestMAPE float64
	CVStd        float64
	SampleCount  int
}

// WeightVector is an append-only record of model weights for one owner.
// At most one row per owner may be DeployActive at any instant.
type WeightVector struct {
	ID            string
	OwnerKind     OwnerKind
	OwnerID       string
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	ModelWeights  [8]float64 // indexed by models.AllModels order, sums to 1
	Source        WeightSource
	Metrics       TrainingMetrics
	MLConfidence  float64
	Deployed      DeployState
	RejectReason  string
}

// Prediction is an append-only record of one ensemble valuation.
type Prediction struct {
	ID            string
	CompanyID     string
	IssuedAt      time.Time
	HorizonDays   int
	FairValue     float64
	Confidence    float64
	WeightsDigest string
}

// Outcome is written exactly once per Prediction, after its horizon.
type Outcome struct {
	PredictionID       string
	ActualPrice        float64
	AbsPctError        float64
	ModelContributions map[ModelID]float64
	ReconciledAt       time.Time
}

// Dimension enumerates the five scoring dimensions.
type Dimension string

const (
	DimValuation     Dimension = "valuation"
	DimProfitability Dimension = "profitability"
	DimGrowth        Dimension = "growth"
	DimHealth        Dimension = "health"
	DimRisk          Dimension = "risk"
)

// DimensionScore is one dimension's value in [0,100] plus its breakdown.
type DimensionScore struct {
	CompanyID string
	Dimension Dimension
	AsOf      time.Time
	Value     float64
	SubMetrics map[string]float64
}

// Rating is the letter-grade band a composite score maps to.
type Rating string

const (
	RatingAPlus Rating = "A+"
	RatingA     Rating = "A"
	RatingBPlus Rating = "B+"
	RatingB     Rating = "B"
	RatingCPlus Rating = "C+"
	RatingC     Rating = "C"
	RatingD     Rating = "D"
	RatingF     Rating = "F"
)

// ScoreSource records whether a composite used default or ML-optimised
// dimension weights.
type ScoreSource string

const (
	ScoreDefault ScoreSource = "default"
	ScoreML      ScoreSource = "ml"
)

// CompositeScore is the final 0-100 score with letter rating.
type CompositeScore struct {
	CompanyID        string
	AsOf             time.Time
	Composite        float64
	Rating           Rating
	DimensionWeights map[Dimension]float64
	DimensionScores  map[Dimension]float64
	Source           ScoreSource
	MLConfidence     float64
}

// IndustryProfile summarises one industry's training state.
type IndustryProfile struct {
	Industry              string
	SampleCount           int
	CentroidFeatureVector []float64
	BestModels            []ModelID
	LastTrained           time.Time
}
