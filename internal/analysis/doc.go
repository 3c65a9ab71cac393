// Package analysis holds the aggregation engine behind every report: period
// filtering, totals and buckets, trends, the health score, the forecast, goal
// tracking and the rule-based insights.
//
// Every function here is pure. Callers pass the reference instant explicitly
// and own all I/O. Money is summed in integer cents; ratios are computed with
// shopspring/decimal and only rounded when a report emits them.
//
// Weekday indexes follow time.Weekday: 0 is Sunday, 6 is Saturday.
package analysis
