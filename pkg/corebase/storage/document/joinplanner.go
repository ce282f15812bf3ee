package document

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/corebase/corebase/internal/platform/docerr"
	"github.com/corebase/corebase/pkg/corebase"
)

// Get implements the document side of the Join Planner: one aggregation
// pipeline built from ops, with $lookup per join and a $facet stage that
// runs the paginated result and the total count in the same round trip.
func (a *Adapter) Get(ctx context.Context, table string, ops []corebase.Operation, qo corebase.QueryOptions) (corebase.PagedResult[map[string]any], error) {
	pipeline := buildLookupStages(ops)

	if match := filterToMongo(qo.Filters); len(match) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}

	dataStages := bson.A{}
	if qo.OrderBy != "" {
		dir := 1
		if qo.SortDirection == corebase.SortDesc {
			dir = -1
		}
		dataStages = append(dataStages, bson.M{"$sort": bson.D{{Key: mongoField(qo.OrderBy), Value: dir}}})
	}
	if qo.Paginated() {
		dataStages = append(dataStages, bson.M{"$skip": (qo.EffectivePage() - 1) * qo.PageSize})
		dataStages = append(dataStages, bson.M{"$limit": qo.PageSize})
	}

	pipeline = append(pipeline, bson.D{{Key: "$facet", Value: bson.M{
		"data":  dataStages,
		"count": bson.A{bson.M{"$count": "total"}},
	}}})

	cur, err := a.coll(table).Aggregate(ctx, pipeline)
	if err != nil {
		return corebase.PagedResult[map[string]any]{}, docerr.Wrap(err, "get_joined")
	}
	defer cur.Close(ctx)

	var facet []struct {
		Data  []bson.M `bson:"data"`
		Count []struct {
			Total int `bson:"total"`
		} `bson:"count"`
	}
	if err := cur.All(ctx, &facet); err != nil {
		return corebase.PagedResult[map[string]any]{}, docerr.Wrap(err, "get_joined")
	}

	entities := []map[string]any{}
	total := 0
	if len(facet) > 0 {
		for _, raw := range facet[0].Data {
			entities = append(entities, transformJoined(raw, ops))
		}
		if len(facet[0].Count) > 0 {
			total = facet[0].Count[0].Total
		}
	}

	return corebase.NewPagedResult(entities, total, qo.EffectivePage(), qo.PageSize), nil
}

// buildLookupStages emits one $lookup (+ $unwind for one-to-one joins) per
// Operation. LeftJoinMany chained off an earlier LeftJoinMany's alias
// resolves naturally here: the earlier $lookup has already materialized
// its array field on the pipeline's working document, so localField just
// names that nested path directly — no recursive subquery construction is
// needed the way the relational planner needs for nested IN chains.
func buildLookupStages(ops []corebase.Operation) bson.A {
	stages := bson.A{}
	for _, op := range ops {
		localField := mongoLocalField(op.LocalField)
		lookup := bson.M{
			"$lookup": bson.M{
				"from":         op.From,
				"localField":   localField,
				"foreignField": mongoField(op.ForeignField),
				"as":           op.As,
			},
		}
		stages = append(stages, lookup)
		switch op.Kind {
		case corebase.JoinLeft:
			stages = append(stages, bson.M{"$unwind": bson.M{"path": "$" + op.As, "preserveNullAndEmptyArrays": true}})
		case corebase.JoinInner:
			stages = append(stages, bson.M{"$unwind": bson.M{"path": "$" + op.As, "preserveNullAndEmptyArrays": false}})
		case corebase.JoinLeftMany:
			// left as an array field; no unwind.
		}
	}
	return stages
}

// mongoLocalField rewrites a localField of "alias.field" into the dotted
// path "alias.field" mongo's $lookup expects directly — one-to-one join
// aliases and LeftJoinMany aliases are both already top-level document
// fields by the time a later stage references them, since $lookup always
// writes its whole result under `as` on the working document.
func mongoLocalField(localField string) string {
	return mongoField(localField)
}

// transformJoined renders a raw aggregation result document into the wire
// shape: ids to hex strings, one-to-one joins null out when absent,
// LeftJoinMany joins are always an array (possibly empty).
func transformJoined(raw bson.M, ops []corebase.Operation) map[string]any {
	out := fromBSON(raw)
	for _, op := range ops {
		v, ok := out[op.As]
		if !ok {
			if op.Kind == corebase.JoinLeftMany {
				out[op.As] = []any{}
			} else {
				out[op.As] = nil
			}
			continue
		}
		switch op.Kind {
		case corebase.JoinLeftMany:
			if v == nil {
				out[op.As] = []any{}
			}
		default:
			if m, isMap := v.(map[string]any); isMap && len(m) == 0 {
				out[op.As] = nil
			}
		}
	}
	return out
}
