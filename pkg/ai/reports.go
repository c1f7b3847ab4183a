package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"freshcart.app/storefront/pkg/mongo"
)

// AIReportResponse represents the structure of AI-generated reports
type AIReportResponse struct {
	Status      string     `json:"status"`
	Data        ReportData `json:"data"`
	GeneratedAt time.Time  `json:"generated_at"`
	AIEnabled   bool       `json:"ai_enabled"`
}

type ReportData struct {
	RawData    interface{} `json:"raw_data"`
	AIInsights string      `json:"ai_insights,omitempty"`
	Summary    string      `json:"summary"`
	Error      string      `json:"error,omitempty"`
}

// GenerateBasketInsights generates AI-powered analysis of basket value
// segmentation. The raw aggregation is always returned; AI commentary is
// attached when the service is configured.
func GenerateBasketInsights(ctx context.Context) (*AIReportResponse, error) {
	basketData, err := mongo.GetBasketValueSegments(ctx)
	if err != nil {
		return &AIReportResponse{
			Status:      "error",
			Data:        ReportData{Error: "Failed to fetch basket data: " + err.Error()},
			GeneratedAt: time.Now(),
			AIEnabled:   IsEnabled(),
		}, err
	}

	response := &AIReportResponse{
		Status:      "success",
		GeneratedAt: time.Now(),
		AIEnabled:   IsEnabled(),
		Data: ReportData{
			RawData: basketData,
			Summary: "Basket segmentation data retrieved successfully",
		},
	}

	if IsEnabled() {
		userPrompt := formatBasketDataPrompt(basketData)
		aiInsights, err := generateCompletion(ctx, BasketInsightsSystemPrompt, userPrompt)
		if err != nil {
			response.Data.Error = "AI analysis failed: " + err.Error()
		} else {
			response.Data.AIInsights = aiInsights
			response.Data.Summary = "AI-generated basket insights and recommendations"
		}
	} else {
		response.Data.Summary = "Raw basket data (AI insights unavailable)"
	}

	return response, nil
}

// GenerateSalesReport generates AI-powered commentary on sales over time.
func GenerateSalesReport(ctx context.Context, startDate, endDate, groupBy string) (*AIReportResponse, error) {
	salesData, err := mongo.GetSalesAnalytics(ctx, startDate, endDate, groupBy)
	if err != nil {
		return &AIReportResponse{
			Status:      "error",
			Data:        ReportData{Error: "Failed to fetch sales data: " + err.Error()},
			GeneratedAt: time.Now(),
			AIEnabled:   IsEnabled(),
		}, err
	}

	response := &AIReportResponse{
		Status:      "success",
		GeneratedAt: time.Now(),
		AIEnabled:   IsEnabled(),
		Data: ReportData{
			RawData: salesData,
			Summary: "Sales data retrieved successfully",
		},
	}

	if IsEnabled() {
		userPrompt := formatSalesDataPrompt(salesData)
		aiInsights, err := generateCompletion(ctx, SalesReportSystemPrompt, userPrompt)
		if err != nil {
			response.Data.Error = "AI analysis failed: " + err.Error()
		} else {
			response.Data.AIInsights = aiInsights
			response.Data.Summary = "AI-generated sales insights and recommendations"
		}
	} else {
		response.Data.Summary = "Raw sales data (AI insights unavailable)"
	}

	return response, nil
}

func formatSalesDataPrompt(salesData interface{}) string {
	jsonData, _ := json.MarshalIndent(salesData, "", "  ")
	return fmt.Sprintf(`Analyze the following time-series sales data from a grocery delivery storefront:

%s

Please provide:
1. Key revenue and volume trends over the period
2. Notable anomalies and their likely causes
3. Average order value and tipping observations
4. Actionable next steps for the management team`, string(jsonData))
}

func formatBasketDataPrompt(basketData interface{}) string {
	jsonData, _ := json.MarshalIndent(basketData, "", "  ")
	return fmt.Sprintf(`Analyze the following basket value segmentation data from a grocery delivery storefront:

%s

Please provide:
1. How order values distribute across the bands and what that implies
2. Whether the free delivery threshold appears well placed
3. Tactics to grow average basket value
4. Actionable next steps for the growth team`, string(jsonData))
}
