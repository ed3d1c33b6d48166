package mirror

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gridbase/internal/domain"
	"gridbase/schema"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// mongoWriter implements Destination for MongoDB. Rows become documents
// keyed by display name, with the backend row id under _row_id. Lists
// stay lists; mongo stores them natively.
type mongoWriter struct {
	client *mongo.Client
	dbName string
}

func newMongoWriter(target *domain.MirrorTarget, password string) (*mongoWriter, error) {
	if target.Database == "" {
		return nil, fmt.Errorf("mongodb target needs a database name")
	}

	var uri string
	// A full connection string in Host (Atlas mongodb+srv:// or plain
	// mongodb://) is used directly; otherwise build one from host:port.
	if strings.HasPrefix(target.Host, "mongodb+srv://") || strings.HasPrefix(target.Host, "mongodb://") {
		uri = target.Host
		// Replace the <password> placeholder Atlas puts in connection strings.
		if password != "" {
			uri = strings.ReplaceAll(uri, "<password>", password)
		}
	} else {
		port := target.Port
		if port == 0 {
			port = 27017
		}
		if target.Username != "" {
			uri = fmt.Sprintf("mongodb://%s:%s@%s:%d", target.Username, password, target.Host, port)
		} else {
			uri = fmt.Sprintf("mongodb://%s:%d", target.Host, port)
		}
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return &mongoWriter{client: client, dbName: target.Database}, nil
}

func (w *mongoWriter) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return w.client.Ping(ctx, nil)
}

func (w *mongoWriter) Write(ctx context.Context, table string, fm *schema.FieldMap, rows []schema.Row, mode domain.SyncMode) (int, error) {
	coll := w.client.Database(w.dbName).Collection(table)

	if mode == domain.SyncModeReplace {
		if _, err := coll.DeleteMany(ctx, bson.D{}); err != nil {
			return 0, fmt.Errorf("clear collection: %w", err)
		}
	}
	if len(rows) == 0 {
		return 0, nil
	}

	docs := make([]any, 0, len(rows))
	for _, row := range rows {
		doc := bson.M{rowIDColumn: row.ID()}
		for k, v := range row {
			if k == "id" {
				continue
			}
			doc[k] = v
		}
		docs = append(docs, doc)
	}

	res, err := coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert documents: %w", err)
	}
	return len(res.InsertedIDs), nil
}

func (w *mongoWriter) Close() error {
	return w.client.Disconnect(context.Background())
}
