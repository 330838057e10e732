package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const BlogsColName = "blogs"

type Blog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AuthorID  uuid.UUID          `bson:"author_id" json:"author_id"`
	Title     string             `bson:"title" json:"title" validate:"required"`
	Content   string             `bson:"content" json:"content" validate:"required"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

func (b *Blog) BeforeCreate() error {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	return nil
}

type BlogsRepo interface {
	CreateBlog(ctx context.Context, blog *Blog) (*Blog, error)
	GetBlogByID(ctx context.Context, id primitive.ObjectID) (*Blog, error)
	ListBlogs(ctx context.Context) ([]*Blog, error)
	UpdateBlog(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*Blog, error)
	DeleteBlog(ctx context.Context, id primitive.ObjectID) error
}

func (mdb *MongodbRepo) CreateBlog(ctx context.Context, blog *Blog) (*Blog, error) {
	if err := blog.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare blog for creation: %w", err)
	}

	col, err := mdb.GetCollection(ctx, DBName, BlogsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	if _, err := col.InsertOne(ctx, blog); err != nil {
		return nil, fmt.Errorf("failed to insert blog: %v", err)
	}

	return blog, nil
}

func (mdb *MongodbRepo) GetBlogByID(ctx context.Context, id primitive.ObjectID) (*Blog, error) {
	col, err := mdb.GetCollection(ctx, DBName, BlogsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var blog Blog
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&blog); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, NotFoundf("blog %s", id.Hex())
		}
		return nil, fmt.Errorf("failed to find blog: %v", err)
	}

	return &blog, nil
}

func (mdb *MongodbRepo) ListBlogs(ctx context.Context) ([]*Blog, error) {
	col, err := mdb.GetCollection(ctx, DBName, BlogsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	cursor, err := col.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, fmt.Errorf("error finding blogs: %v", err)
	}
	defer cursor.Close(ctx)

	blogs := []*Blog{}
	for cursor.Next(ctx) {
		var blog Blog
		if err := cursor.Decode(&blog); err != nil {
			return nil, fmt.Errorf("error decoding blog: %v", err)
		}
		blogs = append(blogs, &blog)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return blogs, nil
}

func (mdb *MongodbRepo) UpdateBlog(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*Blog, error) {
	if len(fields) == 0 {
		return nil, Validationf("no fields to update")
	}

	col, err := mdb.GetCollection(ctx, DBName, BlogsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	fields["updated_at"] = time.Now()

	var updated Blog
	err = col.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, NotFoundf("blog %s", id.Hex())
		}
		return nil, fmt.Errorf("failed to update blog: %v", err)
	}

	return &updated, nil
}

func (mdb *MongodbRepo) DeleteBlog(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DBName, BlogsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete blog: %v", err)
	}
	if res.DeletedCount == 0 {
		return NotFoundf("blog %s", id.Hex())
	}
	return nil
}
