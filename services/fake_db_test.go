package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"mingle_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDB is an in-memory DB implementation for tests. It understands the
// equality-only key conditions and the two update-expression shapes the
// services actually issue.
type fakeDB struct {
	mu     sync.Mutex
	tables map[string][]map[string]types.AttributeValue
	keys   map[string][]string // table -> key attribute names

	// failQueries injects an error for every query against a table.
	failQueries map[string]error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		tables: make(map[string][]map[string]types.AttributeValue),
		keys: map[string][]string{
			models.RelationshipsTable:       {"requesterId", "addresseeId"},
			models.SwipesTable:              {"swiperId", "swipedId"},
			models.MatchesTable:             {"pairKey"},
			models.ConversationsTable:       {"pairKey", "type"},
			models.MessagesTable:            {"conversationId", "messageId"},
			models.SwipeCountersTable:       {"userId"},
			models.UserProfilesTable:        {"userId"},
			models.NotificationCursorsTable: {"userId"},
			models.PostRepliesTable:         {"recipientId", "replyId"},
			models.EventActivityTable:       {"recipientId", "activityId"},
		},
		failQueries: make(map[string]error),
	}
}

func stringValue(av types.AttributeValue) (string, bool) {
	s, ok := av.(*types.AttributeValueMemberS)
	if !ok {
		return "", false
	}
	return s.Value, true
}

func (f *fakeDB) keyOf(table string, item map[string]types.AttributeValue) string {
	parts := make([]string, 0, len(f.keys[table]))
	for _, attr := range f.keys[table] {
		v, _ := stringValue(item[attr])
		parts = append(parts, v)
	}
	return strings.Join(parts, "|")
}

func (f *fakeDB) findIndex(table string, key map[string]types.AttributeValue) int {
	want := f.keyOf(table, key)
	for i, row := range f.tables[table] {
		if f.keyOf(table, row) == want {
			return i
		}
	}
	return -1
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	dup := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		dup[k] = v
	}
	return dup
}

func (f *fakeDB) GetItem(ctx context.Context, table string, key map[string]types.AttributeValue) (map[string]types.AttributeValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.findIndex(table, key); i >= 0 {
		return copyItem(f.tables[table][i]), nil
	}
	return nil, nil
}

func (f *fakeDB) PutItem(ctx context.Context, table string, item interface{}) error {
	marshaled, err := attributevalue.MarshalMap(item)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.findIndex(table, marshaled); i >= 0 {
		f.tables[table][i] = marshaled
		return nil
	}
	f.tables[table] = append(f.tables[table], marshaled)
	return nil
}

func (f *fakeDB) PutItemIfAbsent(ctx context.Context, table string, item interface{}, keyAttr string) (bool, error) {
	marshaled, err := attributevalue.MarshalMap(item)
	if err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.findIndex(table, marshaled); i >= 0 {
		return false, nil
	}
	f.tables[table] = append(f.tables[table], marshaled)
	return true, nil
}

func (f *fakeDB) UpdateItem(ctx context.Context, table string, updateExpression string, key map[string]types.AttributeValue, values map[string]types.AttributeValue, names map[string]string) (map[string]types.AttributeValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.findIndex(table, key)
	if i < 0 {
		// DynamoDB upserts on UpdateItem
		f.tables[table] = append(f.tables[table], copyItem(key))
		i = len(f.tables[table]) - 1
	}
	row := f.tables[table][i]

	if strings.Contains(updateExpression, "list_append") {
		// SET <attr> = list_append(if_not_exists(<attr>, :empty), :newItem)
		attr := strings.TrimSpace(strings.TrimPrefix(strings.Split(updateExpression, "=")[0], "SET"))
		existing, _ := row[attr].(*types.AttributeValueMemberL)
		appended, ok := values[":newItem"].(*types.AttributeValueMemberL)
		if !ok {
			return nil, fmt.Errorf("fakeDB: list_append without :newItem")
		}
		var list []types.AttributeValue
		if existing != nil {
			list = append(list, existing.Value...)
		}
		list = append(list, appended.Value...)
		row[attr] = &types.AttributeValueMemberL{Value: list}
		return copyItem(row), nil
	}

	for _, clause := range strings.Split(strings.TrimPrefix(updateExpression, "SET "), ", ") {
		parts := strings.SplitN(clause, " = ", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("fakeDB: unsupported update clause %q", clause)
		}
		attr := strings.TrimSpace(parts[0])
		if resolved, ok := names[attr]; ok {
			attr = resolved
		}
		value, ok := values[strings.TrimSpace(parts[1])]
		if !ok {
			return nil, fmt.Errorf("fakeDB: missing value for clause %q", clause)
		}
		row[attr] = value
	}
	return copyItem(row), nil
}

func (f *fakeDB) DeleteItem(ctx context.Context, table string, key map[string]types.AttributeValue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.findIndex(table, key); i >= 0 {
		f.tables[table] = append(f.tables[table][:i], f.tables[table][i+1:]...)
	}
	return nil
}

func (f *fakeDB) query(table, keyCondition string, values map[string]types.AttributeValue, names map[string]string, limit int32) ([]map[string]types.AttributeValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failQueries[table]; err != nil {
		return nil, err
	}

	type condition struct {
		attr  string
		value string
	}
	var conditions []condition
	for _, clause := range strings.Split(keyCondition, " AND ") {
		parts := strings.SplitN(clause, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("fakeDB: unsupported key condition %q", keyCondition)
		}
		attr := strings.TrimSpace(parts[0])
		if resolved, ok := names[attr]; ok {
			attr = resolved
		}
		value, ok := values[strings.TrimSpace(parts[1])]
		if !ok {
			return nil, fmt.Errorf("fakeDB: missing value in %q", keyCondition)
		}
		s, ok := stringValue(value)
		if !ok {
			return nil, fmt.Errorf("fakeDB: non-string condition value in %q", keyCondition)
		}
		conditions = append(conditions, condition{attr: attr, value: s})
	}

	var matches []map[string]types.AttributeValue
	for _, row := range f.tables[table] {
		ok := true
		for _, cond := range conditions {
			v, found := stringValue(row[cond.attr])
			if !found || v != cond.value {
				ok = false
				break
			}
		}
		if ok {
			matches = append(matches, copyItem(row))
			if limit > 0 && int32(len(matches)) >= limit {
				break
			}
		}
	}
	return matches, nil
}

func (f *fakeDB) QueryItems(ctx context.Context, table, keyCondition string, values map[string]types.AttributeValue, names map[string]string, limit int32) ([]map[string]types.AttributeValue, error) {
	return f.query(table, keyCondition, values, names, limit)
}

func (f *fakeDB) QueryItemsWithIndex(ctx context.Context, table, index, keyCondition string, values map[string]types.AttributeValue, names map[string]string, limit int32) ([]map[string]types.AttributeValue, error) {
	return f.query(table, keyCondition, values, names, limit)
}

// count returns the number of rows currently stored for a table.
func (f *fakeDB) count(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tables[table])
}
