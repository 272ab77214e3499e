// Package sessions persists per-shop offline sessions in DynamoDB.
// Layout: PK = SHOP#<domain>, SK = SESSION#<id>. Access tokens are
// encrypted at rest; the key comes from SESSION_ENC_KEY_B64.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"backend/internal/db"
	"backend/internal/security"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Session is a shop's offline token record. Deleted wholesale when the
// shop uninstalls.
type Session struct {
	ID          string
	Shop        string
	AccessToken string
	Scope       string
	CreatedAt   string
}

type sessionItem struct {
	PK             string `dynamodbav:"PK"`
	SK             string `dynamodbav:"SK"`
	Shop           string `dynamodbav:"Shop"`
	AccessTokenEnc string `dynamodbav:"AccessTokenEnc"`
	Scope          string `dynamodbav:"Scope"`
	CreatedAt      string `dynamodbav:"CreatedAt"`
}

type DDBClient interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

type Store struct {
	Client DDBClient
}

func shopPK(shop string) string {
	return fmt.Sprintf("SHOP#%s", shop)
}

func sessionSK(id string) string {
	return fmt.Sprintf("SESSION#%s", id)
}

func tableName() (string, error) {
	t := strings.TrimSpace(db.SessionsTableName())
	if t == "" {
		return "", errors.New("SESSIONS_TABLE not set")
	}
	return t, nil
}

func encryptionKey() ([]byte, error) {
	b64 := os.Getenv("SESSION_ENC_KEY_B64")
	if b64 == "" {
		return nil, errors.New("SESSION_ENC_KEY_B64 not set")
	}
	return security.LoadKeyFromBase64(b64)
}

// Put stores a session, encrypting the access token first.
func (s *Store) Put(ctx context.Context, sess Session) error {
	tbl, err := tableName()
	if err != nil {
		return err
	}
	if strings.TrimSpace(sess.Shop) == "" || strings.TrimSpace(sess.ID) == "" {
		return errors.New("session needs shop and id")
	}

	key, err := encryptionKey()
	if err != nil {
		return err
	}
	enc, err := security.EncryptAESGCM(key, sess.AccessToken)
	if err != nil {
		return fmt.Errorf("encrypt session token: %w", err)
	}

	createdAt := sess.CreatedAt
	if createdAt == "" {
		createdAt = time.Now().UTC().Format(time.RFC3339)
	}

	av, err := attributevalue.MarshalMap(sessionItem{
		PK:             shopPK(sess.Shop),
		SK:             sessionSK(sess.ID),
		Shop:           sess.Shop,
		AccessTokenEnc: enc,
		Scope:          sess.Scope,
		CreatedAt:      createdAt,
	})
	if err != nil {
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(tbl),
		Item:      av,
	})
	return err
}

// FindByShop returns one session for the shop with the token decrypted, or
// (nil, nil) when the shop has no session at all.
func (s *Store) FindByShop(ctx context.Context, shop string) (*Session, error) {
	tbl, err := tableName()
	if err != nil {
		return nil, err
	}

	out, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(tbl),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :pref)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":   &types.AttributeValueMemberS{Value: shopPK(shop)},
			":pref": &types.AttributeValueMemberS{Value: "SESSION#"},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, nil
	}

	var item sessionItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, err
	}

	key, err := encryptionKey()
	if err != nil {
		return nil, err
	}
	token, err := security.DecryptAESGCM(key, item.AccessTokenEnc)
	if err != nil {
		return nil, fmt.Errorf("decrypt session token: %w", err)
	}

	return &Session{
		ID:          strings.TrimPrefix(item.SK, "SESSION#"),
		Shop:        item.Shop,
		AccessToken: token,
		Scope:       item.Scope,
		CreatedAt:   item.CreatedAt,
	}, nil
}

// DeleteAllForShop removes every session for the shop and returns how many
// were deleted. Zero matches is success: the uninstall webhook may arrive
// more than once.
func (s *Store) DeleteAllForShop(ctx context.Context, shop string) (int, error) {
	tbl, err := tableName()
	if err != nil {
		return 0, err
	}

	out, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(tbl),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :pref)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":   &types.AttributeValueMemberS{Value: shopPK(shop)},
			":pref": &types.AttributeValueMemberS{Value: "SESSION#"},
		},
		ProjectionExpression: aws.String("PK, SK"),
	})
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, item := range out.Items {
		sk, ok := item["SK"].(*types.AttributeValueMemberS)
		if !ok {
			continue
		}
		_, err := s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(tbl),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: shopPK(shop)},
				"SK": &types.AttributeValueMemberS{Value: sk.Value},
			},
		})
		if err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
