package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Transactor runs units of work inside a multi-document transaction. The
// session context handed to fn is what the repositories must receive for
// their writes to join the transaction. Transactions need a replica set; with
// enabled=false fn runs directly and only the version check on clock status
// guards concurrent writers.
type Transactor struct {
	client  *mongo.Client
	enabled bool
}

func NewTransactor(client *mongo.Client, enabled bool) *Transactor {
	return &Transactor{client: client, enabled: enabled}
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.enabled || mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	sess, err := t.client.StartSession()
	if err != nil {
		return storageErr("start session", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
