package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/helpmesh/helpmesh/internal/domain"
)

// MessageRepository implements chat.MessageStore on the messages collection.
// User references are stored as ObjectIDs so the conversation aggregation
// can join applicant identity from the users collection.
type MessageRepository struct {
	coll *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{coll: db.Collection("messages")}
}

type messageDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	SenderID   primitive.ObjectID `bson:"senderId"`
	ReceiverID primitive.ObjectID `bson:"receiverId"`
	Content    string             `bson:"content"`
	Timestamp  time.Time          `bson:"timestamp"`
	IsRead     bool               `bson:"isRead"`
}

func (d *messageDoc) toDomain() *domain.Message {
	return &domain.Message{
		ID:         d.ID.Hex(),
		SenderID:   d.SenderID.Hex(),
		ReceiverID: d.ReceiverID.Hex(),
		Content:    d.Content,
		Timestamp:  d.Timestamp,
		IsRead:     d.IsRead,
	}
}

func oid(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: bad id %q", domain.ErrInvalidMessage, hex)
	}
	return id, nil
}

// bothDirections matches every message exchanged between the pair.
func bothDirections(a, b primitive.ObjectID) bson.M {
	return bson.M{
		"$or": bson.A{
			bson.M{"senderId": a, "receiverId": b},
			bson.M{"senderId": b, "receiverId": a},
		},
	}
}

// EnsureIndexes creates the conversation and unread lookup indexes.
func (r *MessageRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "senderId", Value: 1}, {Key: "receiverId", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "receiverId", Value: 1}, {Key: "isRead", Value: 1}}},
	})
	return err
}

func (r *MessageRepository) Insert(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	sender, err := oid(msg.SenderID)
	if err != nil {
		return nil, err
	}
	receiver, err := oid(msg.ReceiverID)
	if err != nil {
		return nil, err
	}

	doc := messageDoc{
		SenderID:   sender,
		ReceiverID: receiver,
		Content:    msg.Content,
		Timestamp:  msg.Timestamp,
		IsRead:     msg.IsRead,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	out := *msg
	out.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &out, nil
}

func (r *MessageRepository) Conversation(ctx context.Context, userID, otherID string, limit int64) ([]*domain.Message, error) {
	a, err := oid(userID)
	if err != nil {
		return nil, err
	}
	b, err := oid(otherID)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bothDirections(a, b), opts)
	if err != nil {
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []messageDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", err)
	}

	msgs := make([]*domain.Message, 0, len(docs))
	for i := range docs {
		msgs = append(msgs, docs[i].toDomain())
	}
	return msgs, nil
}

func (r *MessageRepository) MarkRead(ctx context.Context, receiverID, senderID string) (int64, error) {
	receiver, err := oid(receiverID)
	if err != nil {
		return 0, err
	}
	sender, err := oid(senderID)
	if err != nil {
		return 0, err
	}

	res, err := r.coll.UpdateMany(ctx,
		bson.M{"receiverId": receiver, "senderId": sender, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *MessageRepository) UnreadCount(ctx context.Context, userID string) (int64, error) {
	receiver, err := oid(userID)
	if err != nil {
		return 0, err
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"receiverId": receiver, "isRead": false})
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

type summaryDoc struct {
	OtherID primitive.ObjectID `bson:"_id"`
	User    struct {
		ID       primitive.ObjectID `bson:"_id"`
		Username string             `bson:"username"`
		Email    string             `bson:"email"`
	} `bson:"user"`
	LastMessage struct {
		Content   string             `bson:"content"`
		Timestamp time.Time          `bson:"timestamp"`
		IsRead    bool               `bson:"isRead"`
		SenderID  primitive.ObjectID `bson:"senderId"`
	} `bson:"lastMessage"`
}

// Summaries runs the inbox aggregation: newest message per counterpart,
// joined with the counterpart's identity, most recently active first.
func (r *MessageRepository) Summaries(ctx context.Context, userID string) ([]*domain.ConversationSummary, error) {
	uid, err := oid(userID)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"$or": bson.A{bson.M{"senderId": uid}, bson.M{"receiverId": uid}},
		}}},
		{{Key: "$addFields", Value: bson.M{
			"otherUserId": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$senderId", uid}}, "$receiverId", "$senderId"},
			},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":         "$otherUserId",
			"lastMessage": bson.M{"$first": "$$ROOT"},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$project", Value: bson.M{
			"_id": 1,
			"user": bson.M{
				"_id":      "$user._id",
				"username": "$user.username",
				"email":    "$user.email",
			},
			"lastMessage": bson.M{
				"content":   "$lastMessage.content",
				"timestamp": "$lastMessage.timestamp",
				"isRead":    "$lastMessage.isRead",
				"senderId":  "$lastMessage.senderId",
			},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "lastMessage.timestamp", Value: -1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate conversations: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []summaryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode conversations: %w", err)
	}

	out := make([]*domain.ConversationSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.ConversationSummary{
			OtherUserID: d.OtherID.Hex(),
			User: domain.UserSummary{
				ID:       d.User.ID.Hex(),
				Username: d.User.Username,
				Email:    d.User.Email,
			},
			LastMessage: domain.LastMessage{
				Content:   d.LastMessage.Content,
				Timestamp: d.LastMessage.Timestamp,
				IsRead:    d.LastMessage.IsRead,
				SenderID:  d.LastMessage.SenderID.Hex(),
			},
		})
	}
	return out, nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	mid, err := oid(id)
	if err != nil {
		return nil, domain.ErrMessageNotFound
	}

	var doc messageDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": mid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrMessageNotFound
		}
		return nil, fmt.Errorf("find message: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	mid, err := oid(id)
	if err != nil {
		return domain.ErrMessageNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": mid})
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}

func (r *MessageRepository) DeleteConversation(ctx context.Context, userID, otherID string) (int64, error) {
	a, err := oid(userID)
	if err != nil {
		return 0, err
	}
	b, err := oid(otherID)
	if err != nil {
		return 0, err
	}

	res, err := r.coll.DeleteMany(ctx, bothDirections(a, b))
	if err != nil {
		return 0, fmt.Errorf("delete conversation: %w", err)
	}
	return res.DeletedCount, nil
}
