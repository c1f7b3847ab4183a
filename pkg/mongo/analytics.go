package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type SalesBucket struct {
	Period     string  `json:"period" bson:"_id"`
	OrderCount int     `json:"order_count" bson:"order_count"`
	Revenue    float64 `json:"revenue" bson:"revenue"`
	AvgOrder   float64 `json:"avg_order" bson:"avg_order"`
	TotalTips  float64 `json:"total_tips" bson:"total_tips"`
}

type SalesAnalyticsResult struct {
	GroupBy string        `json:"group_by"`
	Buckets []SalesBucket `json:"buckets"`
}

// GetSalesAnalytics aggregates delivered order revenue over time, grouped by
// day or month. Dates are inclusive "2006-01-02" bounds; either may be empty.
func GetSalesAnalytics(ctx context.Context, startDate, endDate, groupBy string) (*SalesAnalyticsResult, error) {
	collection := GetCollection("orders")

	dateFormat := "%Y-%m-%d"
	if groupBy == "month" {
		dateFormat = "%Y-%m"
	} else {
		groupBy = "day"
	}

	match := bson.D{{Key: "status", Value: "delivered"}}
	createdAt := bson.D{}
	if start, err := time.Parse("2006-01-02", startDate); err == nil {
		createdAt = append(createdAt, bson.E{Key: "$gte", Value: start})
	}
	if end, err := time.Parse("2006-01-02", endDate); err == nil {
		createdAt = append(createdAt, bson.E{Key: "$lt", Value: end.AddDate(0, 0, 1)})
	}
	if len(createdAt) > 0 {
		match = append(match, bson.E{Key: "created_at", Value: createdAt})
	}

	pipeline := bson.A{
		bson.D{{Key: "$match", Value: match}},
		bson.D{
			{Key: "$group", Value: bson.D{
				{Key: "_id", Value: bson.D{
					{Key: "$dateToString", Value: bson.D{
						{Key: "format", Value: dateFormat},
						{Key: "date", Value: "$created_at"},
					}},
				}},
				{Key: "order_count", Value: bson.D{{Key: "$sum", Value: 1}}},
				{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$total_price"}}},
				{Key: "avg_order", Value: bson.D{{Key: "$avg", Value: "$total_price"}}},
				{Key: "total_tips", Value: bson.D{{Key: "$sum", Value: "$tip"}}},
			}},
		},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		bson.D{
			{Key: "$project", Value: bson.D{
				{Key: "order_count", Value: 1},
				{Key: "revenue", Value: 1},
				{Key: "total_tips", Value: 1},
				{Key: "avg_order", Value: bson.D{{Key: "$round", Value: bson.A{"$avg_order", 2}}}},
			}},
		},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var buckets []SalesBucket
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, err
	}

	return &SalesAnalyticsResult{GroupBy: groupBy, Buckets: buckets}, nil
}

type BasketSegment struct {
	Segment        string  `json:"segment" bson:"_id"`
	MinTotal       float64 `json:"min_total" bson:"min_total"`
	MaxTotal       float64 `json:"max_total" bson:"max_total"`
	OrderCount     int     `json:"order_count" bson:"count"`
	AvgItems       float64 `json:"avg_items" bson:"avg_items"`
	TotalRevenue   float64 `json:"total_revenue" bson:"total_revenue"`
	AvgTipPerOrder float64 `json:"avg_tip_per_order" bson:"avg_tip_per_order"`
}

type BasketSegmentsResult struct {
	Segments    []BasketSegment `json:"segments"`
	TotalOrders int             `json:"total_orders"`
}

// GetBasketValueSegments buckets delivered orders by total price so reports
// can show how baskets distribute across value bands.
func GetBasketValueSegments(ctx context.Context) (*BasketSegmentsResult, error) {
	collection := GetCollection("orders")

	pipeline := bson.A{
		bson.D{
			{Key: "$match", Value: bson.D{
				{Key: "status", Value: "delivered"},
			}},
		},
		bson.D{
			{Key: "$bucket", Value: bson.D{
				{Key: "groupBy", Value: "$total_price"},
				{Key: "boundaries", Value: bson.A{0, 200, 500, 1000, 2500}},
				{Key: "default", Value: "2500+"},
				{Key: "output", Value: bson.D{
					{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
					{Key: "avg_items", Value: bson.D{{Key: "$avg", Value: bson.D{{Key: "$size", Value: "$lines"}}}}},
					{Key: "total_revenue", Value: bson.D{{Key: "$sum", Value: "$total_price"}}},
					{Key: "avg_tip_per_order", Value: bson.D{{Key: "$avg", Value: "$tip"}}},
					{Key: "min_total", Value: bson.D{{Key: "$min", Value: "$total_price"}}},
					{Key: "max_total", Value: bson.D{{Key: "$max", Value: "$total_price"}}},
				}},
			}},
		},
		bson.D{
			{Key: "$addFields", Value: bson.D{
				{Key: "segment", Value: bson.D{
					{Key: "$switch", Value: bson.D{
						{Key: "branches", Value: bson.A{
							bson.D{
								{Key: "case", Value: bson.D{{Key: "$eq", Value: bson.A{"$_id", 0}}}},
								{Key: "then", Value: "Top-up (0-200)"},
							},
							bson.D{
								{Key: "case", Value: bson.D{{Key: "$eq", Value: bson.A{"$_id", 200}}}},
								{Key: "then", Value: "Everyday (200-500)"},
							},
							bson.D{
								{Key: "case", Value: bson.D{{Key: "$eq", Value: bson.A{"$_id", 500}}}},
								{Key: "then", Value: "Weekly (500-1000)"},
							},
							bson.D{
								{Key: "case", Value: bson.D{{Key: "$eq", Value: bson.A{"$_id", 1000}}}},
								{Key: "then", Value: "Stock-up (1000-2500)"},
							},
						}},
						{Key: "default", Value: "Bulk (2500+)"},
					}},
				}},
			}},
		},
		bson.D{
			{Key: "$project", Value: bson.D{
				{Key: "_id", Value: "$segment"},
				{Key: "min_total", Value: 1},
				{Key: "max_total", Value: 1},
				{Key: "count", Value: 1},
				{Key: "avg_items", Value: bson.D{{Key: "$round", Value: bson.A{"$avg_items", 2}}}},
				{Key: "total_revenue", Value: bson.D{{Key: "$round", Value: bson.A{"$total_revenue", 2}}}},
				{Key: "avg_tip_per_order", Value: bson.D{{Key: "$round", Value: bson.A{"$avg_tip_per_order", 2}}}},
			}},
		},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var segments []BasketSegment
	if err := cursor.All(ctx, &segments); err != nil {
		return nil, err
	}

	totalOrders := 0
	for _, segment := range segments {
		totalOrders += segment.OrderCount
	}

	result := &BasketSegmentsResult{
		Segments:    segments,
		TotalOrders: totalOrders,
	}

	return result, nil
}
