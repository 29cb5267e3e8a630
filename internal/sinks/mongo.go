// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sinks

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/relabs-tech/weather_station/internal/env"
	"github.com/relabs-tech/weather_station/internal/imu"
	"github.com/relabs-tech/weather_station/internal/orientation"
)

// Mongo inserts each reading as one document. Inserts are independent: no
// transactions, no dedup.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongo prepares a client for url. The driver connects lazily, so an
// unreachable server shows up as delivery failures, not here.
func NewMongo(url, database, collection string) (*Mongo, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(url))
	if err != nil {
		return nil, fmt.Errorf("mongodb: client: %w", err)
	}
	return &Mongo{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

func (m *Mongo) Name() string { return "mongodb" }

func (m *Mongo) Deliver(ctx context.Context, r env.Reading) error {
	res, err := m.coll.InsertOne(ctx, Document(r))
	if err != nil {
		return fmt.Errorf("mongodb: insert: %w", err)
	}
	log.Printf("upload: mongodb response: inserted %v", res.InsertedID)
	return nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Document is the flat record stored per reading.
func Document(r env.Reading) bson.D {
	doc := bson.D{
		{Key: "temperature", Value: r.TemperatureC},
		{Key: "humidity", Value: r.Humidity},
		{Key: "pressure", Value: r.Pressure},
		{Key: "compass", Value: r.Compass},
		{Key: "compassRaw", Value: vectorDoc(r.CompassRaw)},
		{Key: "gyroscope", Value: poseDoc(r.Gyroscope)},
		{Key: "gyroscopeRaw", Value: vectorDoc(r.GyroscopeRaw)},
		{Key: "accelerometer", Value: poseDoc(r.Accelerometer)},
		{Key: "accelerometerRaw", Value: vectorDoc(r.AccelerometerRaw)},
		{Key: "device", Value: r.Device},
		{Key: "uploadDtInUtc", Value: r.UploadedAtUTC},
		{Key: "uploadDtInLocal", Value: r.UploadedAtLocal},
	}
	if r.Location != nil {
		doc = append(doc, bson.E{Key: "location", Value: bson.D{
			{Key: "lat", Value: r.Location.Latitude},
			{Key: "lon", Value: r.Location.Longitude},
		}})
	}
	return doc
}

func vectorDoc(v imu.Vector) bson.D {
	return bson.D{{Key: "x", Value: v.X}, {Key: "y", Value: v.Y}, {Key: "z", Value: v.Z}}
}

func poseDoc(p orientation.Pose) bson.D {
	return bson.D{{Key: "pitch", Value: p.Pitch}, {Key: "roll", Value: p.Roll}, {Key: "yaw", Value: p.Yaw}}
}
