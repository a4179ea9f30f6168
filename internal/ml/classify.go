// Package ml calls the remote crop type classifier.
package ml

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// PredictMethod is the classifier's unary method. Requests and responses
// are google.protobuf.Struct messages.
const PredictMethod = "/croptype.Classifier/Predict"

const (
	maxMessageSize = 10 * 1024 * 1024
	callTimeout    = 15 * time.Minute
)

// Prediction is the classifier output for one feature row.
type Prediction struct {
	Label         int
	Probability   float64
	Probabilities []float64
}

// Classify sends the feature rows to the classifier at addr.
func Classify(ctx context.Context, addr string, features [][]float64) ([]Prediction, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(maxMessageSize),
			grpc.MaxCallSendMsgSize(maxMessageSize),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to gRPC server: %w", err)
	}
	defer conn.Close()
	return ClassifyConn(ctx, conn, features)
}

// ClassifyConn is Classify over an existing connection.
func ClassifyConn(ctx context.Context, cc grpc.ClientConnInterface, features [][]float64) ([]Prediction, error) {
	req, err := featuresRequest(features)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp := &structpb.Struct{}
	if err := cc.Invoke(ctx, PredictMethod, req, resp); err != nil {
		return nil, fmt.Errorf("error calling Predict: %w", err)
	}
	return predictions(resp, len(features))
}

func featuresRequest(features [][]float64) (*structpb.Struct, error) {
	rows := make([]any, len(features))
	for i, f := range features {
		row := make([]any, len(f))
		for j, v := range f {
			row[j] = v
		}
		rows[i] = row
	}
	req, err := structpb.NewStruct(map[string]any{"features": rows})
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	return req, nil
}

func predictions(resp *structpb.Struct, n int) ([]Prediction, error) {
	labels := resp.GetFields()["labels"].GetListValue().GetValues()
	probs := resp.GetFields()["probabilities"].GetListValue().GetValues()
	if len(labels) != n {
		return nil, fmt.Errorf("classifier returned %d labels for %d rows", len(labels), n)
	}
	if len(probs) != 0 && len(probs) != n {
		return nil, fmt.Errorf("classifier returned %d probability rows for %d rows", len(probs), n)
	}

	out := make([]Prediction, n)
	for i, l := range labels {
		p := Prediction{Label: int(l.GetNumberValue())}
		if len(probs) > 0 {
			for _, v := range probs[i].GetListValue().GetValues() {
				p.Probabilities = append(p.Probabilities, v.GetNumberValue())
			}
			if p.Label >= 0 && p.Label < len(p.Probabilities) {
				p.Probability = p.Probabilities[p.Label]
			}
		}
		out[i] = p
	}
	return out, nil
}
