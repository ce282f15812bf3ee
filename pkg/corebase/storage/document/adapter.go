// Package document is the MongoDB-backed corebase.Storage adapter, the
// document counterpart to pkg/corebase/storage/relational. Collections are
// implicit (Mongo creates them on first write), so CollectionSchema only
// needs to name them — no column whitelist, since documents are schemaless
// on the wire already and ModelSpec is what bounds the shape.
package document

import (
	"context"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/corebase/corebase/internal/platform/docerr"
	"github.com/corebase/corebase/pkg/corebase"
)

// Adapter is the document corebase.Storage implementation over the
// official mongo-driver client.
type Adapter struct {
	db *mongo.Database
}

// NewAdapter builds an Adapter against db. Every corebase.Storage method's
// table argument is used directly as a Mongo collection name.
func NewAdapter(db *mongo.Database) *Adapter {
	return &Adapter{db: db}
}

func (a *Adapter) IdSchema() corebase.IdSchema { return corebase.DocumentIdSchema{} }

func (a *Adapter) coll(table string) *mongo.Collection { return a.db.Collection(table) }

// DropTable implements corebase.SchemaDropper by dropping the collection.
func (a *Adapter) DropTable(ctx context.Context, table string) error {
	if err := a.coll(table).Drop(ctx); err != nil {
		return docerr.Wrap(err, "drop_collection")
	}
	return nil
}

func (a *Adapter) GetAll(ctx context.Context, table string) ([]map[string]any, error) {
	return a.Find(ctx, table, corebase.QueryOptions{})
}

func (a *Adapter) GetById(ctx context.Context, table string, id corebase.Id) (map[string]any, error) {
	oid, err := toObjectID(id)
	if err != nil {
		return nil, err
	}
	var raw bson.M
	err = a.coll(table).FindOne(ctx, bson.M{"_id": oid}).Decode(&raw)
	if err != nil {
		return nil, docerr.Wrap(err, "get_by_id")
	}
	return fromBSON(raw), nil
}

func (a *Adapter) GetCount(ctx context.Context, table string, qo corebase.QueryOptions) (int, error) {
	count, err := a.coll(table).CountDocuments(ctx, filterToMongo(qo.Filters))
	if err != nil {
		return 0, docerr.Wrap(err, "get_count")
	}
	return int(count), nil
}

func (a *Adapter) Create(ctx context.Context, table string, entity map[string]any) (map[string]any, error) {
	doc := toBSON(entity)
	delete(doc, "_id")
	res, err := a.coll(table).InsertOne(ctx, doc)
	if err != nil {
		return nil, docerr.Wrap(err, "create")
	}
	doc["_id"] = res.InsertedID
	return fromBSON(doc), nil
}

func (a *Adapter) CreateMany(ctx context.Context, table string, entities []map[string]any) ([]map[string]any, error) {
	if len(entities) == 0 {
		return nil, nil
	}
	docs := make([]any, len(entities))
	for i, e := range entities {
		d := toBSON(e)
		delete(d, "_id")
		docs[i] = d
	}
	res, err := a.coll(table).InsertMany(ctx, docs)
	if err != nil {
		return nil, docerr.Wrap(err, "create_many")
	}
	out := make([]map[string]any, len(docs))
	for i, d := range docs {
		m := d.(bson.M)
		m["_id"] = res.InsertedIDs[i]
		out[i] = fromBSON(m)
	}
	return out, nil
}

func (a *Adapter) BatchUpdate(ctx context.Context, table string, entities []map[string]any) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(entities))
	for _, e := range entities {
		idStr, _ := e["_id"].(string)
		id, err := corebase.DocumentIdSchema{}.Parse(idStr)
		if err != nil {
			return nil, err
		}
		patch := withoutKey(e, "_id")
		updated, err := a.PartialUpdateById(ctx, table, id, patch)
		if err != nil {
			return nil, err
		}
		out = append(out, updated)
	}
	return out, nil
}

func (a *Adapter) FullUpdateById(ctx context.Context, table string, id corebase.Id, entity map[string]any) (map[string]any, error) {
	return a.replaceById(ctx, table, id, entity)
}

func (a *Adapter) PartialUpdateById(ctx context.Context, table string, id corebase.Id, patch map[string]any) (map[string]any, error) {
	oid, err := toObjectID(id)
	if err != nil {
		return nil, err
	}
	set := toBSON(withoutKey(patch, "_id"))
	if len(set) == 0 {
		return a.GetById(ctx, table, id)
	}
	after := options.After
	var raw bson.M
	err = a.coll(table).FindOneAndUpdate(
		ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(&raw)
	if err != nil {
		return nil, docerr.Wrap(err, "partial_update_by_id")
	}
	return fromBSON(raw), nil
}

func (a *Adapter) replaceById(ctx context.Context, table string, id corebase.Id, entity map[string]any) (map[string]any, error) {
	oid, err := toObjectID(id)
	if err != nil {
		return nil, err
	}
	doc := toBSON(withoutKey(entity, "_id"))
	after := options.After
	var raw bson.M
	err = a.coll(table).FindOneAndReplace(
		ctx, bson.M{"_id": oid}, doc,
		&options.FindOneAndReplaceOptions{ReturnDocument: &after},
	).Decode(&raw)
	if err != nil {
		return nil, docerr.Wrap(err, "full_update_by_id")
	}
	return fromBSON(raw), nil
}

func (a *Adapter) Update(ctx context.Context, table string, qo corebase.QueryOptions, patch map[string]any) (int, error) {
	set := toBSON(withoutKey(patch, "_id"))
	if len(set) == 0 {
		return 0, nil
	}
	res, err := a.coll(table).UpdateMany(ctx, filterToMongo(qo.Filters), bson.M{"$set": set})
	if err != nil {
		return 0, docerr.Wrap(err, "update")
	}
	return int(res.ModifiedCount), nil
}

func (a *Adapter) DeleteById(ctx context.Context, table string, id corebase.Id) (corebase.DeleteResult, error) {
	oid, err := toObjectID(id)
	if err != nil {
		return corebase.DeleteResult{}, err
	}
	res, err := a.coll(table).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return corebase.DeleteResult{}, docerr.Wrap(err, "delete_by_id")
	}
	return corebase.DeleteResult{Acked: true, Count: int(res.DeletedCount)}, nil
}

func (a *Adapter) DeleteMany(ctx context.Context, table string, qo corebase.QueryOptions) (corebase.DeleteResult, error) {
	res, err := a.coll(table).DeleteMany(ctx, filterToMongo(qo.Filters))
	if err != nil {
		return corebase.DeleteResult{}, docerr.Wrap(err, "delete_many")
	}
	return corebase.DeleteResult{Acked: true, Count: int(res.DeletedCount)}, nil
}

func (a *Adapter) Find(ctx context.Context, table string, qo corebase.QueryOptions) ([]map[string]any, error) {
	opts := options.Find()
	if qo.OrderBy != "" {
		dir := 1
		if qo.SortDirection == corebase.SortDesc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: mongoField(qo.OrderBy), Value: dir}})
	}
	if qo.Paginated() {
		opts.SetSkip(int64((qo.EffectivePage() - 1) * qo.PageSize))
		opts.SetLimit(int64(qo.PageSize))
	}
	cur, err := a.coll(table).Find(ctx, filterToMongo(qo.Filters), opts)
	if err != nil {
		return nil, docerr.Wrap(err, "find")
	}
	defer cur.Close(ctx)
	var out []map[string]any
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, docerr.Wrap(err, "find")
		}
		out = append(out, fromBSON(raw))
	}
	return out, cur.Err()
}

func (a *Adapter) FindOne(ctx context.Context, table string, qo corebase.QueryOptions) (map[string]any, error) {
	qo.Page, qo.PageSize = 1, 1
	rows, err := a.Find(ctx, table, qo)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func toObjectID(id corebase.Id) (primitive.ObjectID, error) {
	hex, ok := id.Hex()
	if !ok {
		return primitive.ObjectID{}, docerr.Wrap(mongo.ErrNoDocuments, "invalid id")
	}
	return primitive.ObjectIDFromHex(hex)
}

func withoutKey(m map[string]any, skip string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k == skip {
			continue
		}
		out[k] = v
	}
	return out
}

// mongoField maps a wire field name to its BSON key. "_orgId" and "_id"
// keep their literal names (Mongo convention uses "_id" directly, and the
// adapter stores the rest of the underscore-prefixed audit quintuple
// verbatim as bson keys too); every other field passes through unchanged
// since document storage doesn't need the relational snake_case rewrite.
func mongoField(wireName string) string {
	if wireName == "_id" {
		return "_id"
	}
	return strings.TrimPrefix(wireName, "")
}

func filterToMongo(filters map[string]corebase.Predicate) bson.M {
	if len(filters) == 0 {
		return bson.M{}
	}
	out := bson.M{}
	for field, pred := range filters {
		key := mongoField(field)
		if field == "_id" {
			if hex, ok := pred.Value.(string); ok {
				if oid, err := primitive.ObjectIDFromHex(hex); err == nil {
					out[key] = predicateValue(pred, oid)
					continue
				}
			}
		}
		out[key] = predicateValue(pred, pred.Value)
	}
	return out
}

func predicateValue(pred corebase.Predicate, value any) any {
	switch pred.Op {
	case corebase.OpEq:
		return value
	case corebase.OpNe:
		return bson.M{"$ne": value}
	case corebase.OpIn:
		return bson.M{"$in": value}
	case corebase.OpGt:
		return bson.M{"$gt": value}
	case corebase.OpGte:
		return bson.M{"$gte": value}
	case corebase.OpLt:
		return bson.M{"$lt": value}
	case corebase.OpLte:
		return bson.M{"$lte": value}
	case corebase.OpContains:
		s, _ := value.(string)
		return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
	}
	return value
}

// toBSON converts a wire map[string]any into a bson.M, parsing _id/_orgId/
// *Id-suffixed 24-hex strings into ObjectIDs, and leaving everything else
// (including decimal strings) as-is.
func toBSON(m map[string]any) bson.M {
	out := bson.M{}
	for k, v := range m {
		out[k] = coerceBSONValue(k, v)
	}
	return out
}

func coerceBSONValue(key string, v any) any {
	if key == "_id" || key == "_orgId" || strings.HasSuffix(key, "Id") {
		if s, ok := v.(string); ok && s != "" {
			if oid, err := primitive.ObjectIDFromHex(s); err == nil {
				return oid
			}
		}
	}
	return v
}

// fromBSON converts a decoded bson.M back into the wire map[string]any
// shape, rendering ObjectID values as their hex string form.
func fromBSON(m bson.M) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = fromBSONValue(v)
	}
	return out
}

func fromBSONValue(v any) any {
	switch x := v.(type) {
	case primitive.ObjectID:
		return x.Hex()
	case primitive.DateTime:
		return x.Time()
	case bson.M:
		return fromBSON(x)
	case bson.A:
		arr := make([]any, len(x))
		for i, e := range x {
			arr[i] = fromBSONValue(e)
		}
		return arr
	default:
		return v
	}
}
