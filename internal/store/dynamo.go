package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/PratikDhanave/paid-events-service/internal/models"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore.
type DynamoAPI interface {
	dynamodb.ScanAPIClient
	dynamodb.QueryAPIClient
	dynamodb.ListTablesAPIClient
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// DynamoOptions configures the DynamoDB client.
// Endpoint and static credentials are only set for local DynamoDB.
type DynamoOptions struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// DynamoStore keeps records in DynamoDB tables, one per collection.
type DynamoStore struct {
	client DynamoAPI
}

// NewDynamoStore loads the default AWS config chain for opts.Region.
func NewDynamoStore(ctx context.Context, opts DynamoOptions) (*DynamoStore, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return NewDynamoStoreWithClient(client), nil
}

// NewDynamoStoreWithClient wraps an existing client.
func NewDynamoStoreWithClient(client DynamoAPI) *DynamoStore {
	return &DynamoStore{client: client}
}

func (d *DynamoStore) Scan(ctx context.Context, table string) ([]models.Record, error) {
	p := dynamodb.NewScanPaginator(d.client, &dynamodb.ScanInput{
		TableName: aws.String(table),
	})

	records := make([]models.Record, 0)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		for _, item := range page.Items {
			records = append(records, decodeItem(item))
		}
	}
	return records, nil
}

func (d *DynamoStore) Query(ctx context.Context, table string, key Key) ([]models.Record, error) {
	p := dynamodb.NewQueryPaginator(d.client, &dynamodb.QueryInput{
		TableName:              aws.String(table),
		KeyConditionExpression: aws.String("#id = :id"),
		ExpressionAttributeNames: map[string]string{
			"#id": key.Attribute,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: key.Value},
		},
	})

	var records []models.Record
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", table, err)
		}
		for _, item := range page.Items {
			rec := decodeItem(item)
			if err := checkIdentity(rec, key); err != nil {
				return nil, fmt.Errorf("query %s: %w", table, err)
			}
			records = append(records, rec)
		}
	}
	return records, nil
}

func (d *DynamoStore) UpdateIfExists(ctx context.Context, table string, key Key, attribute string, value models.Value) (models.Record, error) {
	out, err := d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(table),
		Key: map[string]types.AttributeValue{
			key.Attribute: &types.AttributeValueMemberS{Value: key.Value},
		},
		ConditionExpression: aws.String("attribute_exists(#attr)"),
		UpdateExpression:    aws.String("SET #attr = :value"),
		ExpressionAttributeNames: map[string]string{
			"#attr": attribute,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":value": encodeValue(value),
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, ErrConditionFailed
		}
		return nil, fmt.Errorf("update %s: %w", table, err)
	}

	rec := decodeItem(out.Attributes)
	if err := checkIdentity(rec, key); err != nil {
		return nil, fmt.Errorf("update %s: %w", table, err)
	}
	return rec, nil
}

func (d *DynamoStore) Ping(ctx context.Context) error {
	_, err := d.client.ListTables(ctx, &dynamodb.ListTablesInput{Limit: aws.Int32(1)})
	return err
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (d *DynamoStore) Close() {}

func encodeValue(v models.Value) types.AttributeValue {
	if v.IsNumeric() {
		return &types.AttributeValueMemberN{Value: v.Text()}
	}
	return &types.AttributeValueMemberS{Value: v.StringVal()}
}

// ErrBadIdentity is returned when a stored item's identity attribute is
// missing or not a string.
var ErrBadIdentity = errors.New("identity attribute missing or not a string")

// decodeItem keeps the string and number attributes of item. Sets, lists,
// maps, booleans, nulls and numbers beyond float64 are dropped.
func decodeItem(item map[string]types.AttributeValue) models.Record {
	rec := make(models.Record, len(item))
	for name, av := range item {
		switch t := av.(type) {
		case *types.AttributeValueMemberS:
			rec[name] = models.String(t.Value)
		case *types.AttributeValueMemberN:
			f, err := strconv.ParseFloat(t.Value, 64)
			if err != nil {
				continue
			}
			rec[name] = models.Numeric(f)
		}
	}
	return rec
}

func checkIdentity(rec models.Record, key Key) error {
	v, ok := rec.Get(key.Attribute)
	if !ok || v.IsNumeric() {
		return fmt.Errorf("%w: %q", ErrBadIdentity, key.Attribute)
	}
	return nil
}
