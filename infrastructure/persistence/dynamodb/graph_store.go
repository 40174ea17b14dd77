package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"graphnav-backend/application/ports"
	"graphnav-backend/domain/graph"
)

// batchWriteLimit is the DynamoDB BatchWriteItem cap.
const batchWriteLimit = 25

// GraphStore implements ports.GraphStore on a single DynamoDB table.
//
// Key scheme:
//
//	node    PK=NODE#<id>  SK=META
//	edge    PK=EDGE#<id>  SK=META   GSI1PK=NODE#<source>  GSI2PK=NODE#<target>
//	counter PK=COUNTER    SK=NODE|EDGE
//
// GSI1 (SourceIndex) answers "edges leaving node X", GSI2 (TargetIndex)
// answers "edges arriving at node X" for cascade deletes.
type GraphStore struct {
	client          *dynamodb.Client
	tableName       string
	sourceIndexName string
	targetIndexName string
	logger          *zap.Logger
}

var _ ports.GraphStore = (*GraphStore)(nil)

// NewGraphStore creates a DynamoDB-backed graph store.
func NewGraphStore(client *dynamodb.Client, tableName, sourceIndexName, targetIndexName string, logger *zap.Logger) *GraphStore {
	return &GraphStore{
		client:          client,
		tableName:       tableName,
		sourceIndexName: sourceIndexName,
		targetIndexName: targetIndexName,
		logger:          logger,
	}
}

// nodeItem represents the DynamoDB item structure for a node
type nodeItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	EntityType  string `dynamodbav:"EntityType"`
	NodeID      int64  `dynamodbav:"NodeID"`
	Name        string `dynamodbav:"Name"`
	Description string `dynamodbav:"Description,omitempty"`
	CreatedAt   string `dynamodbav:"CreatedAt"`
	UpdatedAt   string `dynamodbav:"UpdatedAt"`
}

// edgeItem represents the DynamoDB item structure for an edge
type edgeItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	EdgeID     int64  `dynamodbav:"EdgeID"`
	SourceID   int64  `dynamodbav:"SourceID"`
	TargetID   int64  `dynamodbav:"TargetID"`
	Label      string `dynamodbav:"Label,omitempty"`
	CreatedAt  string `dynamodbav:"CreatedAt"`

	GSI1PK string `dynamodbav:"GSI1PK"` // NODE#<source> - SourceIndex
	GSI2PK string `dynamodbav:"GSI2PK"` // NODE#<target> - TargetIndex
}

func nodeKey(id int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("NODE#%d", id)},
		"SK": &types.AttributeValueMemberS{Value: "META"},
	}
}

func edgeKey(id int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("EDGE#%d", id)},
		"SK": &types.AttributeValueMemberS{Value: "META"},
	}
}

// NodeExists reports whether a node with the given id exists.
func (s *GraphStore) NodeExists(ctx context.Context, id int64) (bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(s.tableName),
		Key:                  nodeKey(id),
		ProjectionExpression: aws.String("PK"),
	})
	if err != nil {
		return false, fmt.Errorf("failed to check node %d: %w", id, err)
	}
	return out.Item != nil, nil
}

// GetNode retrieves a node by its ID.
func (s *GraphStore) GetNode(ctx context.Context, id int64) (*graph.Node, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       nodeKey(id),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get node %d: %w", id, err)
	}
	if out.Item == nil {
		return nil, ports.ErrNodeNotFound
	}

	var item nodeItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal node %d: %w", id, err)
	}
	return item.toNode(), nil
}

// GetOutgoingTargets returns the distinct target ids of all edges leaving
// the given node, via the SourceIndex GSI.
func (s *GraphStore) GetOutgoingTargets(ctx context.Context, sourceID int64) ([]int64, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(fmt.Sprintf("NODE#%d", sourceID)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build edge query: %w", err)
	}

	distinct := make(map[int64]struct{})
	var lastKey map[string]types.AttributeValue
	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.tableName),
			IndexName:                 aws.String(s.sourceIndexName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query edges of node %d: %w", sourceID, err)
		}

		var items []edgeItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal edges of node %d: %w", sourceID, err)
		}
		for _, item := range items {
			distinct[item.TargetID] = struct{}{}
		}

		lastKey = out.LastEvaluatedKey
		if len(lastKey) == 0 {
			break
		}
	}

	targets := make([]int64, 0, len(distinct))
	for id := range distinct {
		targets = append(targets, id)
	}
	return targets, nil
}

// CreateNode persists a new node and assigns its ID from the counter item.
func (s *GraphStore) CreateNode(ctx context.Context, node *graph.Node) error {
	id, err := s.nextID(ctx, "NODE")
	if err != nil {
		return err
	}
	node.ID = id

	item := nodeItem{
		PK:          fmt.Sprintf("NODE#%d", id),
		SK:          "META",
		EntityType:  "NODE",
		NodeID:      id,
		Name:        node.Name,
		Description: node.Description,
		CreatedAt:   node.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   node.UpdatedAt.Format(time.RFC3339Nano),
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal node: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return fmt.Errorf("failed to save node %d: %w", id, err)
	}

	s.logger.Debug("Node saved", zap.Int64("nodeID", id), zap.String("name", node.Name))
	return nil
}

// UpdateNode persists changes to an existing node.
func (s *GraphStore) UpdateNode(ctx context.Context, node *graph.Node) error {
	node.UpdatedAt = time.Now().UTC()

	update := expression.
		Set(expression.Name("Name"), expression.Value(node.Name)).
		Set(expression.Name("Description"), expression.Value(node.Description)).
		Set(expression.Name("UpdatedAt"), expression.Value(node.UpdatedAt.Format(time.RFC3339Nano)))
	cond := expression.AttributeExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build node update: %w", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       nodeKey(node.ID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return ports.ErrNodeNotFound
		}
		return fmt.Errorf("failed to update node %d: %w", node.ID, err)
	}
	return nil
}

// DeleteNode removes a node and cascades to every incident edge, querying
// both GSIs so in- and out-edges are covered.
func (s *GraphStore) DeleteNode(ctx context.Context, id int64) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.tableName),
		Key:                 nodeKey(id),
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return ports.ErrNodeNotFound
		}
		return fmt.Errorf("failed to delete node %d: %w", id, err)
	}

	edgeIDs := make(map[int64]struct{})
	for _, index := range []struct {
		name string
		key  string
	}{
		{s.sourceIndexName, "GSI1PK"},
		{s.targetIndexName, "GSI2PK"},
	} {
		ids, err := s.edgeIDsByIndex(ctx, index.name, index.key, id)
		if err != nil {
			return err
		}
		for _, edgeID := range ids {
			edgeIDs[edgeID] = struct{}{}
		}
	}

	return s.deleteEdgeBatch(ctx, edgeIDs)
}

// edgeIDsByIndex queries one GSI for all edge ids attached to a node.
func (s *GraphStore) edgeIDsByIndex(ctx context.Context, indexName, keyAttr string, nodeID int64) ([]int64, error) {
	keyCond := expression.Key(keyAttr).Equal(expression.Value(fmt.Sprintf("NODE#%d", nodeID)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build cascade query: %w", err)
	}

	var ids []int64
	var lastKey map[string]types.AttributeValue
	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.tableName),
			IndexName:                 aws.String(indexName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query incident edges of node %d: %w", nodeID, err)
		}

		var items []edgeItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal incident edges: %w", err)
		}
		for _, item := range items {
			ids = append(ids, item.EdgeID)
		}

		lastKey = out.LastEvaluatedKey
		if len(lastKey) == 0 {
			break
		}
	}
	return ids, nil
}

// deleteEdgeBatch removes edges in BatchWriteItem chunks.
func (s *GraphStore) deleteEdgeBatch(ctx context.Context, edgeIDs map[int64]struct{}) error {
	requests := make([]types.WriteRequest, 0, len(edgeIDs))
	for id := range edgeIDs {
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{Key: edgeKey(id)},
		})
	}

	for start := 0; start < len(requests); start += batchWriteLimit {
		end := start + batchWriteLimit
		if end > len(requests) {
			end = len(requests)
		}
		batch := requests[start:end]

		for len(batch) > 0 {
			out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{s.tableName: batch},
			})
			if err != nil {
				return fmt.Errorf("failed to cascade-delete edges: %w", err)
			}
			batch = out.UnprocessedItems[s.tableName]
		}
	}
	return nil
}

// ListNodes returns a page of nodes ordered by id, plus the total count.
// Node listing is a Scan; the table is keyed for traversal, not enumeration.
func (s *GraphStore) ListNodes(ctx context.Context, offset, limit int) ([]*graph.Node, int, error) {
	filter := expression.Name("EntityType").Equal(expression.Value("NODE"))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build node scan: %w", err)
	}

	var all []*graph.Node
	var lastKey map[string]types.AttributeValue
	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(s.tableName),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan nodes: %w", err)
		}

		var items []nodeItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal nodes: %w", err)
		}
		for _, item := range items {
			all = append(all, item.toNode())
		}

		lastKey = out.LastEvaluatedKey
		if len(lastKey) == 0 {
			break
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)
	if offset >= total {
		return []*graph.Node{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// CreateEdge persists a new directed edge after validating both endpoints.
func (s *GraphStore) CreateEdge(ctx context.Context, edge *graph.Edge) error {
	for _, nodeID := range []int64{edge.SourceNodeID, edge.TargetNodeID} {
		exists, err := s.NodeExists(ctx, nodeID)
		if err != nil {
			return err
		}
		if !exists {
			return ports.ErrNodeNotFound
		}
	}

	id, err := s.nextID(ctx, "EDGE")
	if err != nil {
		return err
	}
	edge.ID = id

	item := edgeItem{
		PK:         fmt.Sprintf("EDGE#%d", id),
		SK:         "META",
		EntityType: "EDGE",
		EdgeID:     id,
		SourceID:   edge.SourceNodeID,
		TargetID:   edge.TargetNodeID,
		Label:      edge.Label,
		CreatedAt:  edge.CreatedAt.Format(time.RFC3339Nano),
		GSI1PK:     fmt.Sprintf("NODE#%d", edge.SourceNodeID),
		GSI2PK:     fmt.Sprintf("NODE#%d", edge.TargetNodeID),
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal edge: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return fmt.Errorf("failed to save edge %d: %w", id, err)
	}

	s.logger.Debug("Edge saved",
		zap.Int64("edgeID", id),
		zap.Int64("sourceID", edge.SourceNodeID),
		zap.Int64("targetID", edge.TargetNodeID),
	)
	return nil
}

// ListEdges returns a page of edges ordered by id, plus the total count.
// Like ListNodes this is a Scan; the table is keyed for traversal.
func (s *GraphStore) ListEdges(ctx context.Context, offset, limit int) ([]*graph.Edge, int, error) {
	filter := expression.Name("EntityType").Equal(expression.Value("EDGE"))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build edge scan: %w", err)
	}

	var all []*graph.Edge
	var lastKey map[string]types.AttributeValue
	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(s.tableName),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan edges: %w", err)
		}

		var items []edgeItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal edges: %w", err)
		}
		for _, item := range items {
			all = append(all, item.toEdge())
		}

		lastKey = out.LastEvaluatedKey
		if len(lastKey) == 0 {
			break
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)
	if offset >= total {
		return []*graph.Edge{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// DeleteEdge removes a single edge by id.
func (s *GraphStore) DeleteEdge(ctx context.Context, id int64) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.tableName),
		Key:                 edgeKey(id),
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return ports.ErrEdgeNotFound
		}
		return fmt.Errorf("failed to delete edge %d: %w", id, err)
	}
	return nil
}

// Ping verifies the table is reachable.
func (s *GraphStore) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.tableName),
	})
	if err != nil {
		return fmt.Errorf("graph store unreachable: %w", err)
	}
	return nil
}

// nextID atomically increments the counter item for the given entity kind.
func (s *GraphStore) nextID(ctx context.Context, kind string) (int64, error) {
	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "COUNTER"},
			"SK": &types.AttributeValueMemberS{Value: kind},
		},
		UpdateExpression: aws.String("ADD #v :one"),
		ExpressionAttributeNames: map[string]string{
			"#v": "Value",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", kind, err)
	}

	value, ok := out.Attributes["Value"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("unexpected counter attribute for %s", kind)
	}
	id, err := strconv.ParseInt(value.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s counter: %w", kind, err)
	}
	return id, nil
}

func (item nodeItem) toNode() *graph.Node {
	createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	return &graph.Node{
		ID:          item.NodeID,
		Name:        item.Name,
		Description: item.Description,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

func (item edgeItem) toEdge() *graph.Edge {
	createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
	return &graph.Edge{
		ID:           item.EdgeID,
		SourceNodeID: item.SourceID,
		TargetNodeID: item.TargetID,
		Label:        item.Label,
		CreatedAt:    createdAt,
	}
}

// isConditionalCheckFailed reports whether an error is a failed conditional
// write, which this store uses to detect missing items.
func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException"
}
