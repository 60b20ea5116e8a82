package dbclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// mongoConnector implements Connector for MongoDB.
type mongoConnector struct {
	client *mongo.Client
	dbName string
	logger *slog.Logger

	mu      sync.Mutex
	cursor  *mongo.Cursor
	cancel  context.CancelFunc
	fetched int
}

// MongoQuery is the JSON structure accepted as a MongoDB query.
// Only find and aggregate are supported.
type MongoQuery struct {
	Collection string         `json:"collection"`
	Operation  string         `json:"operation,omitempty"` // find (default) | aggregate
	Filter     map[string]any `json:"filter,omitempty"`
	Projection map[string]any `json:"projection,omitempty"`
	Sort       map[string]any `json:"sort,omitempty"`
	Pipeline   []any          `json:"pipeline,omitempty"`
}

func newMongoConnector(uri, dbName string, logger *slog.Logger) (*mongoConnector, error) {
	if !strings.HasPrefix(uri, "mongodb://") && !strings.HasPrefix(uri, "mongodb+srv://") {
		return nil, fmt.Errorf("mongo uri must start with mongodb:// or mongodb+srv://")
	}
	if dbName == "" {
		dbName = databaseFromURI(uri)
	}

	logger = logger.With("driver", DriverMongoDB, "database", dbName)
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	logger.Debug("mongo client created")

	return &mongoConnector{client: client, dbName: dbName, logger: logger}, nil
}

// databaseFromURI extracts the path segment of user:pass@host/DB?params,
// defaulting to "test" like the mongo shell.
func databaseFromURI(uri string) string {
	rest := uri
	for _, prefix := range []string{"mongodb+srv://", "mongodb://"} {
		if strings.HasPrefix(rest, prefix) {
			rest = rest[len(prefix):]
			break
		}
	}
	if at := strings.LastIndex(rest, "@"); at != -1 {
		rest = rest[at+1:]
	}
	if slash := strings.Index(rest, "/"); slash != -1 {
		path := rest[slash+1:]
		if q := strings.Index(path, "?"); q != -1 {
			path = path[:q]
		}
		if path != "" {
			return path
		}
	}
	return "test"
}

// unmarshalEJSON converts MongoDB Extended JSON types ($oid, $date,
// $numberLong, ...) inside a decoded JSON object into BSON values.
func unmarshalEJSON(field map[string]any) (bson.D, error) {
	if field == nil {
		return nil, nil
	}
	raw, err := json.Marshal(field)
	if err != nil {
		return nil, err
	}
	var doc bson.D
	if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
		return nil, fmt.Errorf("extended json: %w", err)
	}
	return doc, nil
}

// ParseMongoQuery decodes and validates a query document.
func ParseMongoQuery(query string) (*MongoQuery, error) {
	var mq MongoQuery
	if err := json.Unmarshal([]byte(query), &mq); err != nil {
		return nil, fmt.Errorf("invalid query JSON: %w", err)
	}
	if mq.Collection == "" {
		return nil, fmt.Errorf("query must specify 'collection'")
	}
	if mq.Operation == "" {
		mq.Operation = "find"
	}
	if mq.Operation != "find" && mq.Operation != "aggregate" {
		return nil, fmt.Errorf("unsupported operation: %s", mq.Operation)
	}
	return &mq, nil
}

func (m *mongoConnector) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return m.client.Ping(ctx, nil)
}

func (m *mongoConnector) Execute(ctx context.Context, query string, fetchSize int) (*QueryPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeCursorLocked(ctx)

	mq, err := ParseMongoQuery(query)
	if err != nil {
		return nil, err
	}
	if fetchSize <= 0 {
		fetchSize = 500
	}

	coll := m.client.Database(m.dbName).Collection(mq.Collection)
	cctx, cancel := context.WithTimeout(ctx, 5*time.Minute)

	var cursor *mongo.Cursor
	switch mq.Operation {
	case "aggregate":
		pipeline := mq.Pipeline
		if pipeline == nil {
			pipeline = []any{}
		}
		cursor, err = coll.Aggregate(cctx, pipeline)
	default:
		cursor, err = m.find(cctx, coll, mq, fetchSize)
	}
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%s: %w", mq.Operation, err)
	}

	m.cursor = cursor
	m.cancel = cancel
	m.fetched = 0
	m.logger.Debug("mongo cursor opened", "collection", mq.Collection, "operation", mq.Operation)

	return m.fetchBatchLocked(cctx, fetchSize)
}

func (m *mongoConnector) find(ctx context.Context, coll *mongo.Collection, mq *MongoQuery, fetchSize int) (*mongo.Cursor, error) {
	filter, err := unmarshalEJSON(mq.Filter)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	if filter == nil {
		filter = bson.D{}
	}

	opts := options.Find().SetBatchSize(int32(fetchSize))
	if mq.Projection != nil {
		proj, err := unmarshalEJSON(mq.Projection)
		if err != nil {
			return nil, fmt.Errorf("projection: %w", err)
		}
		opts.SetProjection(proj)
	}
	if mq.Sort != nil {
		sortDoc, err := unmarshalEJSON(mq.Sort)
		if err != nil {
			return nil, fmt.Errorf("sort: %w", err)
		}
		opts.SetSort(sortDoc)
	}
	return coll.Find(ctx, filter, opts)
}

func (m *mongoConnector) FetchMore(ctx context.Context, fetchSize int) (*QueryPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cursor == nil {
		return nil, fmt.Errorf("no active cursor: execute a query first")
	}
	if fetchSize <= 0 {
		fetchSize = 500
	}
	return m.fetchBatchLocked(ctx, fetchSize)
}

// fetchBatchLocked decodes up to fetchSize documents. Columns follow the
// first-seen order of keys across the batch.
func (m *mongoConnector) fetchBatchLocked(ctx context.Context, fetchSize int) (*QueryPage, error) {
	var docs []bson.D
	for i := 0; i < fetchSize; i++ {
		if !m.cursor.Next(ctx) {
			break
		}
		var doc bson.D
		if err := m.cursor.Decode(&doc); err != nil {
			m.closeCursorLocked(ctx)
			return nil, fmt.Errorf("decode: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := m.cursor.Err(); err != nil {
		m.closeCursorLocked(ctx)
		return nil, fmt.Errorf("cursor: %w", err)
	}

	m.fetched += len(docs)

	colIdx := map[string]int{}
	var columns []string
	for _, doc := range docs {
		for _, elem := range doc {
			if _, ok := colIdx[elem.Key]; !ok {
				colIdx[elem.Key] = len(columns)
				columns = append(columns, elem.Key)
			}
		}
	}

	rows := make([][]any, 0, len(docs))
	for _, doc := range docs {
		row := make([]any, len(columns))
		for _, elem := range doc {
			row[colIdx[elem.Key]] = scalarValue(elem.Value)
		}
		rows = append(rows, row)
	}

	hasMore := len(docs) == fetchSize
	if !hasMore {
		m.closeCursorLocked(ctx)
	}

	return &QueryPage{
		Columns:      columns,
		Rows:         rows,
		TotalFetched: m.fetched,
		HasMore:      hasMore,
	}, nil
}

func (m *mongoConnector) closeCursorLocked(ctx context.Context) {
	if m.cursor != nil {
		m.cursor.Close(context.WithoutCancel(ctx))
		m.cursor = nil
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *mongoConnector) Close() error {
	m.mu.Lock()
	m.closeCursorLocked(context.Background())
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
