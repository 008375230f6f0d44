package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	etldomain "github.com/skywardair/customer-analytics/etl/domain"
)

func makeRow(number int64, segment, province string, clv, probability float64, cancelled bool) etldomain.ScoredCustomerRow {
	return etldomain.ScoredCustomerRow{
		CustomerFeatureRow: etldomain.CustomerFeatureRow{
			LoyaltyNumber: number,
			Province:      province,
			Gender:        "Female",
			LoyaltyCard:   "Aurora",
			CLV:           clv,
			IsCancelled:   cancelled,
			Recency:       2,
			Frequency:     10,
			Monetary:      1000,
			TenureMonths:  24,
			RFMSegment:    segment,
		},
		ChurnProbability: probability,
		ChurnScore:       probability * clv,
	}
}

func fixtureRows() []etldomain.ScoredCustomerRow {
	return []etldomain.ScoredCustomerRow{
		makeRow(1, etldomain.SegmentChampions, "Ontario", 100, 0.1, false),
		makeRow(2, etldomain.SegmentLoyal, "Ontario", 200, 0.2, false),
		makeRow(3, etldomain.SegmentAtRisk, "Quebec", 300, 0.8, true),
		makeRow(4, etldomain.SegmentDormant, "Quebec", 400, 0.9, true),
	}
}

func TestComputeKPIs(t *testing.T) {
	kpis := ComputeKPIs(fixtureRows())

	assert.Equal(t, 4, kpis.Customers)
	assert.Equal(t, 250.0, kpis.AvgCLV)
	assert.Equal(t, 200.0, kpis.MedianCLV)
	assert.Equal(t, 0.5, kpis.CancellationRate)
	assert.Equal(t, 0.5, kpis.RetentionRate)
	assert.Equal(t, 2.0, kpis.AvgRecencyMonths)
	assert.Equal(t, 60.0, kpis.AvgRecencyDays)
	assert.Equal(t, 24.0, kpis.AvgTenureMonths)

	// 75th percentile of {100,200,300,400} is 300; two customers at or above.
	assert.Equal(t, 300.0, kpis.HighValueThreshold)
	assert.Equal(t, 2, kpis.HighValueCustomers)
}

func TestGroupedSummaryPartitionsSlice(t *testing.T) {
	rows := fixtureRows()

	summaries := GroupedSummary(rows, func(r etldomain.ScoredCustomerRow) string { return r.Province }, "", false, MaxGroupTopN)

	total := 0
	for _, g := range summaries {
		total += g.Customers
	}

	assert.Equal(t, len(rows), total)
}

func TestGroupedSummaryDefaultSort(t *testing.T) {
	summaries := GroupedSummary(fixtureRows(), func(r etldomain.ScoredCustomerRow) string { return r.Province }, "", false, 10)
	require.Len(t, summaries, 2)

	// Quebec carries the churn: avg churn score (0.8*300 + 0.9*400)/2 = 300.
	assert.Equal(t, "Quebec", summaries[0].Group)
	assert.Equal(t, 300.0, summaries[0].AvgChurnScore)
	assert.Equal(t, "Ontario", summaries[1].Group)
}

func TestGroupedSummaryInvalidSortFallsBack(t *testing.T) {
	withDefault := GroupedSummary(fixtureRows(), func(r etldomain.ScoredCustomerRow) string { return r.Province }, DefaultGroupSort, false, 10)
	withInvalid := GroupedSummary(fixtureRows(), func(r etldomain.ScoredCustomerRow) string { return r.Province }, "loyalty_number; DROP TABLE", false, 10)

	assert.Equal(t, withDefault, withInvalid)
}

func TestGroupedSummaryTopNTruncates(t *testing.T) {
	summaries := GroupedSummary(fixtureRows(), func(r etldomain.ScoredCustomerRow) string { return r.RFMSegment }, "customers", false, 2)
	assert.Len(t, summaries, 2)

	// Out-of-range top_n values clamp instead of erroring.
	summaries = GroupedSummary(fixtureRows(), func(r etldomain.ScoredCustomerRow) string { return r.RFMSegment }, "", false, -5)
	assert.Len(t, summaries, 1)
}

func TestValueAtRisk(t *testing.T) {
	groups := ValueAtRisk(fixtureRows(), func(r etldomain.ScoredCustomerRow) string { return r.Province }, 10)
	require.Len(t, groups, 2)

	assert.Equal(t, "Quebec", groups[0].Group)
	assert.Equal(t, 600.0, groups[0].TotalValueAtRisk)
	assert.Equal(t, 700.0, groups[0].TotalCLV)
	assert.Equal(t, 2, groups[0].CancelledCount)

	assert.Equal(t, "Ontario", groups[1].Group)
	assert.Equal(t, 50.0, groups[1].TotalValueAtRisk)
}

func TestTopRiskCustomers(t *testing.T) {
	top := TopRiskCustomers(fixtureRows(), 2)
	require.Len(t, top, 2)

	assert.Equal(t, int64(4), top[0].LoyaltyNumber)
	assert.Equal(t, 360.0, top[0].ChurnScore)
	assert.Equal(t, int64(3), top[1].LoyaltyNumber)
}

func TestTopValueCustomers(t *testing.T) {
	top := TopValueCustomers(fixtureRows(), 10, "")
	require.Len(t, top, 4)
	assert.Equal(t, int64(4), top[0].LoyaltyNumber)

	champions := TopValueCustomers(fixtureRows(), 10, etldomain.SegmentChampions)
	require.Len(t, champions, 1)
	assert.Equal(t, int64(1), champions[0].LoyaltyNumber)
}

func TestChurnByCLVTier(t *testing.T) {
	rows := make([]etldomain.ScoredCustomerRow, 0, 9)
	for i := int64(1); i <= 9; i++ {
		rows = append(rows, makeRow(i, etldomain.SegmentLoyal, "Ontario", float64(i*100), 0.1, i%2 == 0))
	}

	tiers := ChurnByCLVTier(rows)
	require.Len(t, tiers, 3)

	assert.Equal(t, "Low", tiers[0].Tier)
	assert.Equal(t, "Medium", tiers[1].Tier)
	assert.Equal(t, "High", tiers[2].Tier)

	total := 0
	for _, tier := range tiers {
		total += tier.Customers
	}

	assert.Equal(t, len(rows), total)
}

func TestChurnByCLVTierDegenerate(t *testing.T) {
	// Identical CLVs cannot split into three tiers.
	rows := []etldomain.ScoredCustomerRow{
		makeRow(1, etldomain.SegmentLoyal, "Ontario", 500, 0.1, false),
		makeRow(2, etldomain.SegmentLoyal, "Ontario", 500, 0.2, true),
		makeRow(3, etldomain.SegmentLoyal, "Ontario", 500, 0.3, false),
		makeRow(4, etldomain.SegmentLoyal, "Ontario", 500, 0.4, false),
	}

	tiers := ChurnByCLVTier(rows)
	require.Len(t, tiers, 1)
	assert.Equal(t, "All", tiers[0].Tier)
	assert.Equal(t, 4, tiers[0].Customers)
}

func TestDoNothingScenario(t *testing.T) {
	scenario := ComputeDoNothingScenario(fixtureRows())

	assert.Equal(t, 4, scenario.Customers)
	assert.Equal(t, 0.5, scenario.CancellationRate)
	assert.Equal(t, 2.0, scenario.ProjectedAtRiskCount)
	assert.Equal(t, 650.0, scenario.TotalValueAtRisk)
}

func TestSinglePriorityInitiative(t *testing.T) {
	initiative := SinglePriorityInitiative(fixtureRows())

	assert.Equal(t, etldomain.SegmentDormant, initiative.BySegment.Group)
	assert.Equal(t, 360.0, initiative.BySegment.TotalValueAtRisk)
	assert.Equal(t, "Quebec", initiative.ByProvince.Group)
	assert.Equal(t, 600.0, initiative.ByProvince.TotalValueAtRisk)
}

func TestCompareSegments(t *testing.T) {
	comparison := CompareSegments(fixtureRows(), etldomain.SegmentChampions, etldomain.SegmentDormant)

	assert.Equal(t, etldomain.SegmentChampions, comparison.SegmentA.Segment)
	assert.Equal(t, 1, comparison.SegmentA.Customers)
	assert.Equal(t, etldomain.SegmentDormant, comparison.SegmentB.Segment)
}

func TestCompareSegmentsFallsBackToPresentSegments(t *testing.T) {
	rows := []etldomain.ScoredCustomerRow{
		makeRow(1, etldomain.SegmentLoyal, "Ontario", 100, 0.1, false),
		makeRow(2, etldomain.SegmentLoyal, "Ontario", 200, 0.2, false),
		makeRow(3, etldomain.SegmentDormant, "Quebec", 300, 0.8, true),
	}

	comparison := CompareSegments(rows, "No Such Segment", "Also Missing")

	assert.Equal(t, etldomain.SegmentLoyal, comparison.SegmentA.Segment)
	assert.Equal(t, etldomain.SegmentDormant, comparison.SegmentB.Segment)
}

func TestTenureAnalysis(t *testing.T) {
	rows := []etldomain.ScoredCustomerRow{
		makeRow(1, etldomain.SegmentLoyal, "Ontario", 100, 0.1, false),
		makeRow(2, etldomain.SegmentLoyal, "Ontario", 200, 0.9, true),
		makeRow(3, etldomain.SegmentLoyal, "Ontario", 300, 0.2, false),
	}
	rows[0].TenureMonths = 3
	rows[1].TenureMonths = 10
	rows[2].TenureMonths = 70

	bands := TenureAnalysis(rows)
	require.Len(t, bands, 3)

	// Sorted by cancellation rate descending: the 7-12 band churned fully.
	assert.Equal(t, "7-12 months", bands[0].Band)
	assert.Equal(t, 1.0, bands[0].CancellationRate)
	assert.Equal(t, 0.0, bands[1].CancellationRate)
}

func TestRevenueImpactFloorsTenureAtOneYear(t *testing.T) {
	rows := fixtureRows()
	for i := range rows {
		rows[i].TenureMonths = 2 // brand-new cohort
	}

	impact := ComputeRevenueImpact(rows)

	// Average tenure of 2 months annualizes against a 1-year floor, so the
	// annualized loss equals the plain projected loss.
	assert.Equal(t, impact.ProjectedCLVLoss, impact.ProjectedAnnualizedLoss)
	assert.Equal(t, 2.0, impact.ProjectedChurnedCount)
}

func TestCorrelationDrivers(t *testing.T) {
	rows := []etldomain.ScoredCustomerRow{
		makeRow(1, etldomain.SegmentLoyal, "Ontario", 100, 0.1, false),
		makeRow(2, etldomain.SegmentDormant, "Quebec", 300, 0.9, true),
	}
	rows[0].Recency = 1
	rows[1].Recency = 3

	drivers := ComputeCorrelationDrivers(rows)

	assert.Equal(t, 1, drivers.ChurnedCustomers)
	assert.Equal(t, 1, drivers.RetainedCustomers)

	byMetric := make(map[string]DriverMetric)
	for _, m := range drivers.Metrics {
		byMetric[m.Metric] = m
	}

	recency := byMetric["recency_months"]
	assert.Equal(t, 3.0, recency.ChurnedAvg)
	assert.Equal(t, 1.0, recency.RetainedAvg)
	assert.Equal(t, 200.0, recency.DifferencePct)

	assert.Equal(t, 1.0, drivers.ChurnedSegmentDistribution[etldomain.SegmentDormant])
	assert.Equal(t, 1.0, drivers.RetainedSegmentDistribution[etldomain.SegmentLoyal])
}

func TestCorrelationDriversZeroRetainedAverage(t *testing.T) {
	rows := []etldomain.ScoredCustomerRow{
		makeRow(1, etldomain.SegmentLoyal, "Ontario", 100, 0.1, false),
		makeRow(2, etldomain.SegmentDormant, "Quebec", 300, 0.9, true),
	}
	rows[0].Frequency = 0
	rows[1].Frequency = 5

	drivers := ComputeCorrelationDrivers(rows)

	for _, m := range drivers.Metrics {
		if m.Metric == "frequency" {
			assert.Equal(t, 0.0, m.DifferencePct)
		}
	}
}

func TestExecuteEmptySlice(t *testing.T) {
	for _, op := range Catalog {
		result, err := Execute(Request{Op: op}, nil, nil)
		require.NoError(t, err, "op %s", op)

		empty, ok := result.(EmptyResult)
		require.True(t, ok, "op %s", op)
		assert.True(t, empty.Empty)
		assert.NotEmpty(t, empty.Message)
	}
}

func TestExecuteBaselineIgnoresSlice(t *testing.T) {
	baseline := fixtureRows()

	result, err := Execute(Request{Op: OpKPIsBaseline}, nil, baseline)
	require.NoError(t, err)

	kpis, ok := result.(KPIs)
	require.True(t, ok)
	assert.Equal(t, 4, kpis.Customers)
}

func TestExecuteUnknownOp(t *testing.T) {
	_, err := Execute(Request{Op: Op("drop_all_tables")}, fixtureRows(), fixtureRows())
	require.Error(t, err)

	var unknownErr *ErrUnknownOp
	assert.ErrorAs(t, err, &unknownErr)
}

func TestExecuteDispatchesEveryCatalogOp(t *testing.T) {
	rows := fixtureRows()

	for _, op := range Catalog {
		result, err := Execute(Request{Op: op}, rows, rows)
		require.NoError(t, err, "op %s", op)
		assert.NotNil(t, result, "op %s", op)
	}
}
