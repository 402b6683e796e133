package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/config"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/db"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/logging"
	"github.com/jackc/pgx/v5/pgxpool"
)

type event struct{}

type metricPutter interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

func putMetrics(ctx context.Context, cw metricPutter, ns string, r result) error {
	now := time.Now()
	metrics := []cwtypes.MetricDatum{
		{MetricName: aws.String("MappingsChecked"), Timestamp: &now, Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(r.CheckedMappings))},
	}
	counts := r.countByKind()
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		metrics = append(metrics, cwtypes.MetricDatum{
			MetricName: aws.String("MappingFindings"),
			Timestamp:  &now,
			Unit:       cwtypes.StandardUnitCount,
			Value:      aws.Float64(float64(counts[k])),
			Dimensions: []cwtypes.Dimension{{Name: aws.String("Kind"), Value: aws.String(k)}},
		})
	}
	_, err := cw.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(ns),
		MetricData: metrics,
	})
	return err
}

func handler(ctx context.Context, _ event) (result, error) {
	defer logging.Sync()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(config.Region()))
	if err != nil {
		return result{}, err
	}
	secretArn := os.Getenv("SECRETS_ARN")
	if secretArn == "" {
		return result{}, fmt.Errorf("SECRETS_ARN env var is required")
	}
	ns := os.Getenv("METRIC_NAMESPACE")
	if ns == "" {
		ns = "Expotoworld/Inventory"
	}

	// DB via Secrets Manager
	dsn, err := config.DatabaseURLFromSecret(ctx, secretsmanager.NewFromConfig(awsCfg), secretArn)
	if err != nil {
		return result{}, err
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return result{}, err
	}
	defer pool.Close()

	res, err := audit(ctx, db.New(pool))
	if err != nil {
		return res, err
	}

	fields := map[string]interface{}{
		"checked_mappings": res.CheckedMappings,
		"warehouses":       res.Warehouses,
		"findings":         len(res.Findings),
	}
	for k, n := range res.countByKind() {
		fields[k] = n
	}
	logging.LogKV("info", "mapping audit complete", fields)
	for _, f := range res.Findings {
		logging.LogKV("warn", "mapping audit finding", map[string]interface{}{
			"product_id": f.ProductID,
			"kind":       f.Kind,
			"detail":     f.Detail,
		})
	}

	if err := putMetrics(ctx, cloudwatch.NewFromConfig(awsCfg), ns, res); err != nil {
		logging.LogKV("error", "PutMetricData failed", map[string]interface{}{"error": err.Error()})
	}
	return res, nil
}

func main() { lambda.Start(handler) }
