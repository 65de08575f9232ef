package repository

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	pkgconfig "github.com/Vjossaab/commercify-backend/pkg/config"
)

// Store-level sentinels. Services re-map these onto the domain taxonomy.
var (
	ErrNotFound = errors.New("document not found")

	// ErrStockChanged reports a conditional stock write that lost the
	// race: the stored value no longer matches what the caller read.
	ErrStockChanged = errors.New("stock changed since read")
)

func NewDynamoDBClient(cfg *pkgconfig.Config) (*dynamodb.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, err
	}

	return dynamodb.NewFromConfig(awsCfg), nil
}
