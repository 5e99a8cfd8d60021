package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vidtube/vidtube-backend/pkg/apierr"
)

const channelProfileCacheTTL = 5 * time.Minute

// ChannelProfile is the denormalized public view of a user's channel.
type ChannelProfile struct {
	ID              primitive.ObjectID `bson:"_id" json:"id"`
	Username        string             `bson:"username" json:"username"`
	FullName        string             `bson:"full_name" json:"full_name"`
	Avatar          string             `bson:"avatar" json:"avatar"`
	CoverImage      string             `bson:"cover_image,omitempty" json:"cover_image,omitempty"`
	SubscriberCount int64              `bson:"subscriber_count" json:"subscriber_count"`
	SubscribedTo    int64              `bson:"subscribed_to_count" json:"subscribed_to_count"`
	IsSubscribed    bool               `bson:"is_subscribed" json:"is_subscribed"`
}

// WatchHistoryEntry is a watched video joined with a summary of its owner.
type WatchHistoryEntry struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Thumbnail string             `bson:"thumbnail" json:"thumbnail"`
	Duration  float64            `bson:"duration" json:"duration"`
	Views     int64              `bson:"views" json:"views"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	Owner     struct {
		ID       primitive.ObjectID `bson:"_id" json:"id"`
		Username string             `bson:"username" json:"username"`
		FullName string             `bson:"full_name" json:"full_name"`
		Avatar   string             `bson:"avatar" json:"avatar"`
	} `bson:"owner" json:"owner"`
}

// ChannelService serves the read-only channel and watch-history views. Both
// are aggregation joins over the document store; the channel profile is
// additionally cached per viewer for a few minutes.
type ChannelService struct {
	db    *mongo.Database
	cache *CacheService
}

func NewChannelService(db *mongo.Database, cache *CacheService) *ChannelService {
	return &ChannelService{db: db, cache: cache}
}

// GetChannelProfile joins the subscription relation onto a channel twice to
// produce subscriber counts and whether the viewer is subscribed.
func (s *ChannelService) GetChannelProfile(ctx context.Context, username string, viewerID primitive.ObjectID) (*ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, apierr.BadRequest("Username is required")
	}

	cacheKey := "channel:" + username + ":" + viewerID.Hex()
	var cached ChannelProfile
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"username": username}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "subscriptions",
			"localField":   "_id",
			"foreignField": "channel",
			"as":           "subscribers",
		}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "subscriptions",
			"localField":   "_id",
			"foreignField": "subscriber",
			"as":           "subscribed_to",
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"subscriber_count":    bson.M{"$size": "$subscribers"},
			"subscribed_to_count": bson.M{"$size": "$subscribed_to"},
			"is_subscribed":       bson.M{"$in": bson.A{viewerID, "$subscribers.subscriber"}},
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"username":            1,
			"full_name":           1,
			"avatar":              1,
			"cover_image":         1,
			"subscriber_count":    1,
			"subscribed_to_count": 1,
			"is_subscribed":       1,
		}}},
	}

	cursor, err := s.db.Collection("users").Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []ChannelProfile
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, apierr.NotFound("Channel does not exist")
	}

	profile := &results[0]
	if err := s.cache.Set(ctx, cacheKey, profile, channelProfileCacheTTL); err != nil {
		return profile, nil
	}
	return profile, nil
}

// GetWatchHistory joins the user's watch-history reference list with the
// videos collection, attaching an owner summary to each entry.
func (s *ChannelService) GetWatchHistory(ctx context.Context, userID primitive.ObjectID) ([]WatchHistoryEntry, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"_id": userID}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "videos",
			"localField":   "watch_history",
			"foreignField": "_id",
			"as":           "watch_history",
			"pipeline": bson.A{
				bson.M{"$lookup": bson.M{
					"from":         "users",
					"localField":   "owner",
					"foreignField": "_id",
					"as":           "owner",
					"pipeline": bson.A{
						bson.M{"$project": bson.M{"username": 1, "full_name": 1, "avatar": 1}},
					},
				}},
				bson.M{"$addFields": bson.M{"owner": bson.M{"$first": "$owner"}}},
			},
		}}},
		bson.D{{Key: "$project", Value: bson.M{"watch_history": 1}}},
	}

	cursor, err := s.db.Collection("users").Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		WatchHistory []WatchHistoryEntry `bson:"watch_history"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, apierr.NotFound("User not found")
	}

	if results[0].WatchHistory == nil {
		return []WatchHistoryEntry{}, nil
	}
	return results[0].WatchHistory, nil
}
