package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/go-api-checkin/internal/domain"
)

const (
	usersHashKey    = "user_id"
	usersPhoneIndex = "phone-index"
	usersPhoneAttr  = "phone"
)

// UserRepo provides typed DynamoDB operations for the users table.
type UserRepo struct {
	client    itemAPI
	tableName string
}

func NewUserRepo(client itemAPI, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

// Put writes u unconditionally. A second account for the same phone is
// not rejected.
func (r *UserRepo) Put(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return domain.Unavailable("dynamodb put user", err)
	}
	return nil
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(usersHashKey, userID),
	})
	if err != nil {
		return nil, domain.Unavailable("dynamodb get user", err)
	}
	if len(out.Item) == 0 {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	return unmarshalUser(out.Item)
}

// GetByPhone returns the first user registered with phone.
func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(usersPhoneIndex),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": usersPhoneAttr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: phone}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, domain.Unavailable("dynamodb query user by phone", err)
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("user with phone: %w", domain.ErrNotFound)
	}
	return unmarshalUser(out.Items[0])
}

func unmarshalUser(item map[string]types.AttributeValue) (*domain.User, error) {
	var u domain.User
	if err := attributevalue.UnmarshalMap(item, &u); err != nil {
		return nil, fmt.Errorf("unmarshal user %s: %w", strValue(item, usersHashKey), err)
	}
	return &u, nil
}
