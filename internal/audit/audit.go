// Package audit keeps a durable trail of verdicts in MongoDB so repeated
// runs against the same target can be diffed after the fact.
//
// Writes never slow the run down:
//
//   - Each verdict is enqueued into a buffered channel (non-blocking).
//   - A single background goroutine drains the channel and performs
//     InsertMany in batches.
//   - If the channel is full the verdict is dropped from the trail; the run
//     report is the source of truth, the trail is best effort.
//   - Close() flushes what remains and disconnects.
package audit

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mughalk/csc301-a2/internal/verdict"
)

const (
	queueSize = 1024
	batchSize = 50
	drainTick = 2 * time.Second
)

// Document is the shape of one verdict in the trail collection.
type Document struct {
	Run        string    `bson:"run"`
	Time       time.Time `bson:"time"`
	Case       string    `bson:"case"`
	Status     string    `bson:"status"`
	Method     string    `bson:"method,omitempty"`
	URL        string    `bson:"url,omitempty"`
	HTTPStatus int       `bson:"http_status,omitempty"`
	Reasons    []string  `bson:"reasons,omitempty"`
}

// Trail is an asynchronous writer for one run's verdicts.
type Trail struct {
	run    string
	col    *mongo.Collection
	client *mongo.Client
	queue  chan Document
	done   chan struct{}
}

// Open connects to uri and starts the background writer. The caller must
// eventually call Close().
func Open(uri, db, collection, runID string) (*Trail, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("audit: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("audit: ping: %w", err)
	}

	col := client.Database(db).Collection(collection)
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "run", Value: 1}, {Key: "time", Value: -1}},
	})

	t := &Trail{
		run:    runID,
		col:    col,
		client: client,
		queue:  make(chan Document, queueSize),
		done:   make(chan struct{}),
	}
	go t.drainLoop()
	return t, nil
}

// Record enqueues v. Never blocks; drops when the queue is full.
func (t *Trail) Record(v verdict.Verdict) {
	doc := Document{
		Run:        t.run,
		Time:       time.Now(),
		Case:       v.Name,
		Status:     string(v.Status),
		Method:     v.Method,
		URL:        v.URL,
		HTTPStatus: v.HTTPStatus,
		Reasons:    v.Reasons,
	}
	select {
	case t.queue <- doc:
	default:
	}
}

func (t *Trail) drainLoop() {
	ticker := time.NewTicker(drainTick)
	defer ticker.Stop()

	batch := make([]interface{}, 0, batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = t.col.InsertMany(ctx, batch)
		batch = batch[:0]
	}

	for {
		select {
		case doc := <-t.queue:
			batch = append(batch, doc)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-t.done:
			for len(t.queue) > 0 {
				batch = append(batch, <-t.queue)
			}
			flush()
			return
		}
	}
}

// Close flushes pending documents and disconnects. Safe to call twice.
func (t *Trail) Close() {
	select {
	case <-t.done:
	default:
		close(t.done)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = t.client.Disconnect(ctx)
}
