package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/factlens/backend/internal/analysis"
	"github.com/factlens/backend/internal/storage/models"
	"github.com/factlens/backend/pkg/logger"
)

// Client wraps the document store behind the narrow read/append/delete
// contract the rest of the service uses. Every mutation is a single-document
// atomic update ($push, $set, $inc), never a read-modify-write round trip,
// so concurrent writers stay safe.
type Client struct {
	client    *mongo.Client
	users     *mongo.Collection
	feedbacks *mongo.Collection
}

func NewClient(uri, database string) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(database)
	c := &Client{
		client:    client,
		users:     db.Collection("users"),
		feedbacks: db.Collection("feedbacks"),
	}

	if err := c.createIndexes(); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	logger.Info("MongoDB client initialized", zap.String("database", database))

	return c, nil
}

func (c *Client) createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := c.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = c.feedbacks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	return err
}

func (c *Client) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}

// AppendHistory pushes one entry onto the user's history log. The log is
// unbounded: there is deliberately no slice cap on the push (see DESIGN.md).
func (c *Client) AppendHistory(ctx context.Context, userEmail string, entry analysis.HistoryEntry) error {
	_, err := c.users.UpdateOne(ctx,
		bson.M{"email": userEmail},
		bson.M{"$push": bson.M{"history": entry}},
	)
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

func (c *Client) ReadHistory(ctx context.Context, userEmail string) ([]analysis.HistoryEntry, error) {
	var user models.UserDocument
	err := c.users.FindOne(ctx, bson.M{"email": userEmail}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("user %s not found", userEmail)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	if user.History == nil {
		return []analysis.HistoryEntry{}, nil
	}
	return user.History, nil
}

func (c *Client) ClearHistory(ctx context.Context, userEmail string) error {
	_, err := c.users.UpdateOne(ctx,
		bson.M{"email": userEmail},
		bson.M{"$set": bson.M{"history": bson.A{}}},
	)
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (c *Client) InsertFeedback(ctx context.Context, record models.FeedbackRecord) error {
	_, err := c.feedbacks.InsertOne(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	return nil
}

// ListFeedback pages through feedback records newest first, joining each one
// best-effort against the submitting users' history. A feedback whose
// analysis has since been cleared comes back with a nil Analysis.
func (c *Client) ListFeedback(ctx context.Context, page, pageSize int) ([]models.FeedbackWithAnalysis, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 5
	}
	skip := int64((page - 1) * pageSize)

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		bson.D{{Key: "$skip", Value: skip}},
		bson.D{{Key: "$limit", Value: int64(pageSize)}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "let", Value: bson.D{{Key: "analysis_id", Value: "$analysisId"}}},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$unwind", Value: "$history"}},
				bson.D{{Key: "$match", Value: bson.D{
					{Key: "$expr", Value: bson.D{{Key: "$eq", Value: bson.A{"$history.id", "$$analysis_id"}}}},
				}}},
				bson.D{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$history"}}}},
			}},
			{Key: "as", Value: "analysisInfo"},
		}}},
		bson.D{{Key: "$addFields", Value: bson.D{
			{Key: "analysis", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$analysisInfo", 0}}}},
		}}},
		bson.D{{Key: "$project", Value: bson.D{{Key: "analysisInfo", Value: 0}}}},
	}

	cursor, err := c.feedbacks.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.FeedbackWithAnalysis
	if err := cursor.All(ctx, &records); err != nil {
		return nil, 0, fmt.Errorf("failed to decode feedback: %w", err)
	}

	total, err := c.feedbacks.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count feedback: %w", err)
	}

	return records, total, nil
}

// IncrementQuizCounters bumps the user's lifetime quiz totals in one atomic
// update.
func (c *Client) IncrementQuizCounters(ctx context.Context, userEmail string, correct, answered int) error {
	_, err := c.users.UpdateOne(ctx,
		bson.M{"email": userEmail},
		bson.M{"$inc": bson.M{
			"totalCorrectQuizAnswers":    correct,
			"totalQuizQuestionsAnswered": answered,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to increment quiz counters: %w", err)
	}
	return nil
}
