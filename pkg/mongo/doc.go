// Package mongo connects to MongoDB with go.mongodb.org/mongo-driver/v2.
package mongo
