package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/jiangshenghai57/protolinc-go/internal/assumption"
	"github.com/jiangshenghai57/protolinc-go/internal/config"
	"github.com/jiangshenghai57/protolinc-go/internal/dateaxis"
	"github.com/jiangshenghai57/protolinc-go/internal/logger"
	"github.com/jiangshenghai57/protolinc-go/internal/payment"
	"github.com/jiangshenghai57/protolinc-go/internal/portfolio"
	"github.com/jiangshenghai57/protolinc-go/internal/rateprovider"
	"github.com/jiangshenghai57/protolinc-go/internal/riskfactor"
	"github.com/jiangshenghai57/protolinc-go/internal/runner"
)

// ProviderWire is the wire representation of one rate provider: either a
// constant (kind "constant", Value set) or a table (kind "table", the rest
// of the fields set, Values row-major over Shape).
type ProviderWire struct {
	Kind        string    `json:"kind"`
	Value       float64   `json:"value,omitempty"`
	RiskFactors []string  `json:"risk_factors,omitempty"`
	Shape       []int     `json:"shape,omitempty"`
	Offsets     []int     `json:"offsets,omitempty"`
	Values      []float64 `json:"values,omitempty"`
}

func (w ProviderWire) build() (rateprovider.Provider, error) {
	switch w.Kind {
	case "constant":
		return rateprovider.NewConstantProvider(w.Value), nil
	case "table":
		rfs := make([]riskfactor.Code, len(w.RiskFactors))
		for i, name := range w.RiskFactors {
			rf, err := riskfactor.Parse(name)
			if err != nil {
				return nil, err
			}
			rfs[i] = rf
		}
		return rateprovider.NewTableProvider(rfs, w.Shape, w.Offsets, w.Values)
	default:
		return nil, fmt.Errorf("unknown provider kind %q", w.Kind)
	}
}

// EntryWire pins a ProviderWire to one (row, col) cell of an AssumptionSet.
type EntryWire struct {
	Row      int          `json:"row"`
	Col      int          `json:"col"`
	Provider ProviderWire `json:"provider"`
}

// AssumptionSetWire is the wire representation of a full assumption matrix.
type AssumptionSetWire struct {
	Dimension int         `json:"dimension"`
	Entries   []EntryWire `json:"entries"`
}

func (w AssumptionSetWire) build() (*assumption.Set, error) {
	set := assumption.NewSet(w.Dimension)
	for _, e := range w.Entries {
		p, err := e.Provider.build()
		if err != nil {
			return nil, fmt.Errorf("entry (%d,%d): %w", e.Row, e.Col, err)
		}
		set.SetProvider(e.Row, e.Col, p)
	}
	return set, nil
}

// PolicyWire mirrors the portfolio.Builder's parallel-array contract for a
// single record, with monetary fields carried as decimal.Decimal across the
// JSON boundary and converted to float64 once the policy is constructed.
type PolicyWire struct {
	CessionID       int64           `json:"cession_id"`
	DOBYYYYMMDD     int64           `json:"dob_yyyymmdd"`
	IssueYYYYMMDD   int64           `json:"issue_date_yyyymmdd"`
	DisableYYYYMMDD int64           `json:"disablement_date_yyyymmdd"` // <= 0 = absent
	Gender          int32           `json:"gender"`
	SmokerStatus    int32           `json:"smoker_status"`
	SumInsured      decimal.Decimal `json:"sum_insured"`
	ReservingRate   decimal.Decimal `json:"reserving_rate"`
	InitialState    int             `json:"initial_state"`
}

// PortfolioWire is the submitted portfolio payload.
type PortfolioWire struct {
	PortfolioDateYYYYMMDD int64        `json:"portfolio_date_yyyymmdd"`
	ProductCode           string       `json:"product_code"`
	Policies              []PolicyWire `json:"policies"`
}

func (w PortfolioWire) build() (*portfolio.Portfolio, error) {
	n := len(w.Policies)
	cessionID := make([]int64, n)
	dob := make([]int64, n)
	issueDate := make([]int64, n)
	disablementDate := make([]int64, n)
	gender := make([]int32, n)
	smokerStatus := make([]int32, n)
	sumInsured := make([]float64, n)
	reservingRate := make([]float64, n)
	initialState := make([]int, n)

	for i, p := range w.Policies {
		cessionID[i] = p.CessionID
		dob[i] = p.DOBYYYYMMDD
		issueDate[i] = p.IssueYYYYMMDD
		disablementDate[i] = p.DisableYYYYMMDD
		gender[i] = p.Gender
		smokerStatus[i] = p.SmokerStatus
		sumInsured[i], _ = p.SumInsured.Float64()
		reservingRate[i], _ = p.ReservingRate.Float64()
		initialState[i] = p.InitialState
	}

	return portfolio.NewBuilder(n).
		SetPortfolioDate(decomposeYYYYMMDD(w.PortfolioDateYYYYMMDD)).
		SetProductCode(w.ProductCode).
		SetCessionID(cessionID).
		SetDateOfBirth(dob).
		SetIssueDate(issueDate).
		SetDisablementDate(disablementDate).
		SetGender(gender).
		SetSmokerStatus(smokerStatus).
		SetSumInsured(sumInsured).
		SetReservingRate(reservingRate).
		SetInitialState(initialState).
		Build()
}

func decomposeYYYYMMDD(v int64) dateaxis.PeriodDate {
	return dateaxis.PeriodDate{Year: int(v / 10000), Month: int((v % 10000) / 100), Day: int(v % 100)}
}

// StatePaymentWire injects one dense [#policies][#timesteps] amount matrix
// paid while occupying state_index, under one payment_type_index.
type StatePaymentWire struct {
	StateIndex       int                 `json:"state_index"`
	PaymentTypeIndex int                 `json:"payment_type_index"`
	Amounts          [][]decimal.Decimal `json:"amounts"`
}

// TransitionPaymentWire injects one dense [#policies][#timesteps] amount
// matrix paid on the (from,to) movement, under one payment_type_index.
type TransitionPaymentWire struct {
	From             int                 `json:"from"`
	To               int                 `json:"to"`
	PaymentTypeIndex int                 `json:"payment_type_index"`
	Amounts          [][]decimal.Decimal `json:"amounts"`
}

// RunRequest is the full payload POST /runs accepts: a portfolio, the
// assumption sets that drive it, and optional conditional payment streams.
type RunRequest struct {
	TimeStep           string                  `json:"time_step"`
	YearsToSimulate    int                     `json:"years_to_simulate"`
	MaxAge             int                     `json:"max_age"`
	NumCPUs            int                     `json:"num_cpus"`
	UseMulticore       bool                    `json:"use_multicore"`
	Portfolio          PortfolioWire           `json:"portfolio"`
	BeAssumptions      AssumptionSetWire       `json:"be_assumptions"`
	OtherAssumptions   []AssumptionSetWire     `json:"other_assumptions"`
	StatePayments      []StatePaymentWire      `json:"state_payments"`
	TransitionPayments []TransitionPaymentWire `json:"transition_payments"`
}

func decimalMatrix(in [][]decimal.Decimal, numPolicies, numTimesteps int) ([][]float64, error) {
	if len(in) != numPolicies {
		return nil, fmt.Errorf("amounts have %d rows, portfolio has %d policies", len(in), numPolicies)
	}
	out := make([][]float64, numPolicies)
	for k, row := range in {
		if len(row) != numTimesteps {
			return nil, fmt.Errorf("policy %d has %d amounts, time axis has %d steps", k, len(row), numTimesteps)
		}
		out[k] = make([]float64, numTimesteps)
		for t, d := range row {
			out[k][t], _ = d.Float64()
		}
	}
	return out, nil
}

func buildPayments(req RunRequest, numPolicies, numTimesteps int) (*payment.AggregatePayments, error) {
	ap := payment.NewAggregatePayments(numPolicies)
	for _, pw := range req.StatePayments {
		matrix, err := decimalMatrix(pw.Amounts, numPolicies, numTimesteps)
		if err != nil {
			return nil, fmt.Errorf("state payment type %d: %w", pw.PaymentTypeIndex, err)
		}
		if err := ap.AddStatePayment(pw.StateIndex, pw.PaymentTypeIndex, matrix); err != nil {
			return nil, err
		}
	}
	for _, pw := range req.TransitionPayments {
		matrix, err := decimalMatrix(pw.Amounts, numPolicies, numTimesteps)
		if err != nil {
			return nil, fmt.Errorf("transition payment type %d: %w", pw.PaymentTypeIndex, err)
		}
		if err := ap.AddTransitionPayment(pw.From, pw.To, pw.PaymentTypeIndex, matrix); err != nil {
			return nil, err
		}
	}
	return ap, nil
}

type runRecord struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Policies  int       `json:"policies"`
	StartedAt time.Time `json:"started_at"`
	Output    string    `json:"output,omitempty"`
	Error     string    `json:"error,omitempty"`
}

var (
	runsMu     sync.RWMutex
	runs       = map[string]*runRecord{}
	workerPool = make(chan struct{}, 100)
	appLog     *logger.Logger
)

func getServiceInfo(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, gin.H{
		"service":     "protolinc-go",
		"description": "Insurance policy cash-flow and state-probability projection engine",
		"version":     "1.0.0",
		"endpoints": gin.H{
			"GET /info":       "Service information and capabilities",
			"GET /runs":       "List submitted projection runs and their status",
			"GET /runs/:id":   "Fetch a run's status and the path of its materialized result file",
			"POST /runs":      "Submit a portfolio and assumption sets, start a projection run",
		},
		"capabilities": []string{
			"Multi-state policy projection (mortality, disability, lapse, and custom state models)",
			"30U/360 day-count time axes, plus a 30E/360 day-count function",
			"Constant and risk-factor-indexed table rate providers",
			"State-conditional and transition-conditional payment streams",
			"Concurrent, deterministic portfolio-group projection",
		},
	})
}

func listRuns(c *gin.Context) {
	runsMu.RLock()
	defer runsMu.RUnlock()
	out := make([]*runRecord, 0, len(runs))
	for _, r := range runs {
		out = append(out, r)
	}
	c.IndentedJSON(http.StatusOK, out)
}

func getRun(c *gin.Context) {
	id := c.Param("id")
	runsMu.RLock()
	r, ok := runs[id]
	runsMu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown run id"})
		return
	}
	c.IndentedJSON(http.StatusOK, r)
}

func submitRun(c *gin.Context) {
	var req RunRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error()})
		return
	}

	ptf, err := req.Portfolio.build()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid portfolio: " + err.Error()})
		return
	}
	beAssumptions, err := req.BeAssumptions.build()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid be_assumptions: " + err.Error()})
		return
	}
	otherAssumptions := make([]*assumption.Set, len(req.OtherAssumptions))
	for i, oa := range req.OtherAssumptions {
		set, err := oa.build()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid other_assumptions[%d]: %v", i, err)})
			return
		}
		otherAssumptions[i] = set
	}

	var granularity dateaxis.Granularity
	switch req.TimeStep {
	case "quarterly":
		granularity = dateaxis.Quarterly
	case "yearly":
		granularity = dateaxis.Yearly
	default:
		granularity = dateaxis.Monthly
	}

	ta := dateaxis.NewTimeAxis(granularity, req.YearsToSimulate, ptf.PortfolioDate)

	payments, err := buildPayments(req, ptf.Len(), ta.Len())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payments: " + err.Error()})
		return
	}

	id := fmt.Sprintf("run_%d", time.Now().UnixNano())
	record := &runRecord{ID: id, Status: "accepted", Policies: ptf.Len(), StartedAt: time.Now()}

	runsMu.Lock()
	runs[id] = record
	runsMu.Unlock()

	cfg := runner.RunConfig{
		StateDimension:  req.BeAssumptions.Dimension,
		Granularity:     granularity,
		YearsToSimulate: req.YearsToSimulate,
		MaxAgeYears:     req.MaxAge,
		NumCPUs:         req.NumCPUs,
		UseMulticore:    req.UseMulticore,
	}

	go func() {
		workerPool <- struct{}{}
		defer func() { <-workerPool }()

		mr := runner.NewMetaRunner(cfg, ta, appLog)

		// The run outlives the HTTP exchange, so it must not inherit the
		// request context: gin cancels that the moment the handler returns.
		result, err := mr.Run(context.Background(), ptf, payments, beAssumptions, otherAssumptions, payments.MaxPaymentIndexUsed()+1)

		runsMu.Lock()
		defer runsMu.Unlock()
		if err != nil {
			record.Status = "failed"
			record.Error = err.Error()
			if appLog != nil {
				appLog.Error("run failed", "run_id", id, "error", err)
			}
			return
		}

		os.MkdirAll("output", 0755)
		filename := fmt.Sprintf("output/%s.json", id)
		file, ferr := os.Create(filename)
		if ferr != nil {
			record.Status = "failed"
			record.Error = ferr.Error()
			return
		}
		defer file.Close()

		headers := result.Headers()
		rows := ta.Len()
		cols := len(headers)
		buf := make([]float64, rows*cols)
		if err := result.Materialize(buf, rows, cols); err != nil {
			record.Status = "failed"
			record.Error = err.Error()
			return
		}
		matrix := make([][]float64, rows)
		for t := 0; t < rows; t++ {
			matrix[t] = buf[t*cols : (t+1)*cols]
		}

		encoder := json.NewEncoder(file)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(gin.H{"headers": headers, "rows": matrix}); err != nil {
			record.Status = "failed"
			record.Error = err.Error()
			return
		}

		record.Status = "complete"
		record.Output = filename
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"id":      id,
		"message": fmt.Sprintf("accepted %d policies, projection started", ptf.Len()),
	})
}

func multiLog() (*gin.Engine, *logger.Logger, error) {
	cfg, err := config.ReadConfig()
	if err != nil {
		log.Println("config.ReadConfig:", err)
		cfg = config.RunConfig{LogPath: "./logs/", LogFile: "protolinc.log"}
	}

	log.SetOutput(os.Stdout)
	f, err := os.Create(cfg.LogPath + cfg.LogFile)
	if err == nil {
		mw := io.MultiWriter(f, os.Stdout)
		gin.DefaultWriter = mw
		gin.DefaultErrorWriter = mw
	}

	lg, err := logger.NewLogger(cfg.LogPath)
	if err != nil {
		return nil, nil, fmt.Errorf("building logger: %w", err)
	}

	router := gin.Default()
	return router, lg, nil
}

func main() {
	router, lg, err := multiLog()
	if err != nil {
		log.Fatal(err)
	}
	appLog = lg

	router.GET("/info", getServiceInfo)
	router.GET("/runs", listRuns)
	router.GET("/runs/:id", getRun)
	router.POST("/runs", submitRun)

	router.Run("localhost:8080")
}
