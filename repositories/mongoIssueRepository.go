package repositories

import (
	"context"
	"errors"
	"regexp"
	"time"

	"urbanfix-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoIssueRepository persists issues in a MongoDB collection. Every mutation
// is a single-document atomic operation.
type MongoIssueRepository struct {
	collection *mongo.Collection
}

var _ IssueRepository = (*MongoIssueRepository)(nil)

func NewMongoIssueRepository(db *mongo.Database) *MongoIssueRepository {
	return &MongoIssueRepository{collection: db.Collection("issues")}
}

func buildQuery(f IssueFilter) bson.M {
	query := bson.M{}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.Status != "" {
		query["status"] = f.Status
	}
	if f.PostedBy != "" {
		query["postedBy.email"] = f.PostedBy
	}
	if f.Search != "" {
		search := regexp.QuoteMeta(f.Search)
		query["$or"] = []bson.M{
			{"title": bson.M{"$regex": search, "$options": "i"}},
			{"description": bson.M{"$regex": search, "$options": "i"}},
			{"location": bson.M{"$regex": search, "$options": "i"}},
		}
	}
	return query
}

func (r *MongoIssueRepository) List(ctx context.Context, filter IssueFilter, page, limit int) (int64, []models.Issue, error) {
	query := buildQuery(filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return 0, nil, err
	}

	skip := (page - 1) * limit
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return 0, nil, err
	}
	defer cursor.Close(ctx)

	issues := make([]models.Issue, 0, limit)
	if err := cursor.All(ctx, &issues); err != nil {
		return 0, nil, err
	}

	return total, issues, nil
}

func (r *MongoIssueRepository) GetByID(ctx context.Context, id string) (*models.Issue, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var issue models.Issue
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&issue)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *MongoIssueRepository) Create(ctx context.Context, issue *models.Issue) (*models.Issue, error) {
	issue.ID = primitive.NewObjectID()
	prepareNewIssue(issue, time.Now())

	if _, err := r.collection.InsertOne(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

func (r *MongoIssueRepository) Update(ctx context.Context, id string, patch IssueUpdate) (*models.Issue, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	set := bson.M{"updatedAt": time.Now()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Location != nil {
		set["location"] = *patch.Location
	}
	if patch.Image != nil {
		set["image"] = *patch.Image
	}

	var issue models.Issue
	err = r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&issue)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *MongoIssueRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddUpvote relies on a conditional update so that the membership check and the
// write land in one round trip: concurrent voters can never lose an increment,
// and a duplicate voter can never be counted twice.
func (r *MongoIssueRepository) AddUpvote(ctx context.Context, id, voter string) (*models.Issue, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	filter := bson.M{
		"_id":            objID,
		"postedBy.email": bson.M{"$ne": voter},
		"upvotedUsers":   bson.M{"$ne": voter},
	}
	update := bson.M{
		"$addToSet": bson.M{"upvotedUsers": voter},
		"$inc":      bson.M{"upvotes": 1},
		"$set":      bson.M{"updatedAt": time.Now()},
	}

	var issue models.Issue
	err = r.collection.FindOneAndUpdate(
		ctx,
		filter,
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&issue)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrVoteConflict
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *MongoIssueRepository) AppendTimeline(ctx context.Context, id string, entry models.TimelineEntry) (*models.Issue, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	update := bson.M{
		"$push": bson.M{"timeline": entry},
		"$set": bson.M{
			"status":    entry.Status,
			"updatedAt": entry.Date,
		},
	}

	var issue models.Issue
	err = r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&issue)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}
