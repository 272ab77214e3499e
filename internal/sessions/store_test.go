package sessions

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDDB keeps items keyed by PK|SK and answers the narrow query shapes
// the store issues.
type fakeDDB struct {
	items map[string]map[string]types.AttributeValue
}

func newFakeDDB() *fakeDDB {
	return &fakeDDB{items: map[string]map[string]types.AttributeValue{}}
}

func itemKey(item map[string]types.AttributeValue) string {
	pk := item["PK"].(*types.AttributeValueMemberS).Value
	sk := item["SK"].(*types.AttributeValueMemberS).Value
	return pk + "|" + sk
}

func (f *fakeDDB) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.items[itemKey(params.Item)] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDDB) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	pk := params.ExpressionAttributeValues[":pk"].(*types.AttributeValueMemberS).Value

	out := &dynamodb.QueryOutput{}
	for _, item := range f.items {
		if item["PK"].(*types.AttributeValueMemberS).Value == pk {
			out.Items = append(out.Items, item)
		}
		if params.Limit != nil && int32(len(out.Items)) >= *params.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeDDB) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	delete(f.items, itemKey(params.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SESSIONS_TABLE", "sessions")
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	t.Setenv("SESSION_ENC_KEY_B64", base64.StdEncoding.EncodeToString(key))
}

func TestPutAndFindByShop(t *testing.T) {
	setupEnv(t)
	ddb := newFakeDDB()
	store := &Store{Client: ddb}

	err := store.Put(context.Background(), Session{
		ID:          "offline_s1",
		Shop:        "s1.myshopify.com",
		AccessToken: "shpat_secret",
		Scope:       "write_metafields",
	})
	require.NoError(t, err)

	// The token never lands in plaintext.
	for _, item := range ddb.items {
		enc := item["AccessTokenEnc"].(*types.AttributeValueMemberS).Value
		assert.NotContains(t, enc, "shpat_secret")
	}

	sess, err := store.FindByShop(context.Background(), "s1.myshopify.com")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "offline_s1", sess.ID)
	assert.Equal(t, "s1.myshopify.com", sess.Shop)
	assert.Equal(t, "shpat_secret", sess.AccessToken)
	assert.Equal(t, "write_metafields", sess.Scope)
	assert.NotEmpty(t, sess.CreatedAt)
}

func TestFindByShopNoSession(t *testing.T) {
	setupEnv(t)
	store := &Store{Client: newFakeDDB()}

	sess, err := store.FindByShop(context.Background(), "other.myshopify.com")
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestPutRequiresShopAndID(t *testing.T) {
	setupEnv(t)
	store := &Store{Client: newFakeDDB()}

	err := store.Put(context.Background(), Session{ID: "", Shop: "s1.myshopify.com"})
	assert.Error(t, err)

	err = store.Put(context.Background(), Session{ID: "x", Shop: " "})
	assert.Error(t, err)
}

func TestDeleteAllForShop(t *testing.T) {
	setupEnv(t)
	ddb := newFakeDDB()
	store := &Store{Client: ddb}

	for _, id := range []string{"a", "b"} {
		require.NoError(t, store.Put(context.Background(), Session{
			ID: id, Shop: "s1.myshopify.com", AccessToken: "tok",
		}))
	}
	require.NoError(t, store.Put(context.Background(), Session{
		ID: "c", Shop: "s2.myshopify.com", AccessToken: "tok",
	}))

	deleted, err := store.DeleteAllForShop(context.Background(), "s1.myshopify.com")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	// The other shop's session survives.
	sess, err := store.FindByShop(context.Background(), "s2.myshopify.com")
	require.NoError(t, err)
	assert.NotNil(t, sess)
}

func TestDeleteAllForShopNoSessions(t *testing.T) {
	setupEnv(t)
	store := &Store{Client: newFakeDDB()}

	deleted, err := store.DeleteAllForShop(context.Background(), "gone.myshopify.com")
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestMissingTableEnv(t *testing.T) {
	t.Setenv("SESSIONS_TABLE", "")
	store := &Store{Client: newFakeDDB()}

	_, err := store.FindByShop(context.Background(), "s1.myshopify.com")
	assert.Error(t, err)
}
