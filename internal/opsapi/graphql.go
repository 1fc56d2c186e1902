package opsapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/sirupsen/logrus"

	"rent-reclaim-bot/internal/wallet"
)

// maxSummaryHours bounds the scanSummary window.
const maxSummaryHours = 24 * 90

type graphQLRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

func newGraphQLHandler(deps Deps, logger logrus.FieldLogger) http.Handler {
	schema, err := newSchema(deps)
	if err != nil {
		panic(err)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
		if err != nil {
			http.Error(w, "Error reading request body", http.StatusBadRequest)
			return
		}

		var req graphQLRequest
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "Error parsing request body", http.StatusBadRequest)
			return
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        r.Context(),
		})

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			logger.WithError(err).Warn("encode graphql result")
		}
	})
}

func newSchema(deps Deps) (graphql.Schema, error) {
	priceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Price",
		Fields: graphql.Fields{
			"symbol":      &graphql.Field{Type: graphql.String},
			"currency":    &graphql.Field{Type: graphql.String},
			"priceUSD":    &graphql.Field{Type: graphql.Float},
			"fetchedAtMs": &graphql.Field{Type: graphql.Float},
			"source":      &graphql.Field{Type: graphql.String},
		},
	})

	estimateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Estimate",
		Fields: graphql.Fields{
			"emptyAccounts": &graphql.Field{Type: graphql.Int},
			"grossSOL":      &graphql.Field{Type: graphql.Float},
			"netSOL":        &graphql.Field{Type: graphql.Float},
			"netUSD":        &graphql.Field{Type: graphql.Float},
			"solDisplay":    &graphql.Field{Type: graphql.String},
			"usdDisplay":    &graphql.Field{Type: graphql.String},
		},
	})

	summaryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ScanSummary",
		Fields: graphql.Fields{
			"scans":         &graphql.Field{Type: graphql.Int},
			"reclaimable":   &graphql.Field{Type: graphql.Int},
			"clean":         &graphql.Field{Type: graphql.Int},
			"chainErrors":   &graphql.Field{Type: graphql.Int},
			"emptyAccounts": &graphql.Field{Type: graphql.Int},
			"netSOL":        &graphql.Field{Type: graphql.Float},
		},
	})

	cachedPrice := func() float64 {
		if deps.Prices == nil {
			return 0
		}
		snap, ok := deps.Prices.Snapshot()
		if !ok {
			return 0
		}
		return snap.PriceUSD
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"price": &graphql.Field{
				Type: priceType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Prices == nil {
						return nil, nil
					}
					snap, ok := deps.Prices.Snapshot()
					if !ok {
						return nil, nil
					}
					return map[string]interface{}{
						"symbol":      snap.Symbol,
						"currency":    snap.Currency,
						"priceUSD":    snap.PriceUSD,
						"fetchedAtMs": float64(snap.FetchedAtMs),
						"source":      snap.Source,
					}, nil
				},
			},
			"estimate": &graphql.Field{
				Type: estimateType,
				Args: graphql.FieldConfigArgument{
					"emptyAccounts": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.Int),
					},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					n := p.Args["emptyAccounts"].(int)
					if n < 0 {
						return nil, errors.New("emptyAccounts must be non-negative")
					}
					est := wallet.EstimateReclaim(n, cachedPrice())
					return map[string]interface{}{
						"emptyAccounts": est.EmptyAccounts,
						"grossSOL":      est.GrossSOL,
						"netSOL":        est.NetSOL,
						"netUSD":        est.NetUSD,
						"solDisplay":    est.SOLDisplay(),
						"usdDisplay":    est.USDDisplay(),
					}, nil
				},
			},
			"scanSummary": &graphql.Field{
				Type: summaryType,
				Args: graphql.FieldConfigArgument{
					"hours": &graphql.ArgumentConfig{
						Type:         graphql.Int,
						DefaultValue: 24,
					},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.ScanLog == nil {
						return nil, errors.New("scan log not configured")
					}
					hours := p.Args["hours"].(int)
					if hours <= 0 || hours > maxSummaryHours {
						return nil, errors.New("hours out of range")
					}
					end := deps.Now()
					start := end.Add(-time.Duration(hours) * time.Hour)
					sum, err := deps.ScanLog.Summarize(p.Context, start.UnixMilli(), end.UnixMilli())
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"scans":         sum.Scans,
						"reclaimable":   sum.Reclaimable,
						"clean":         sum.Clean,
						"chainErrors":   sum.ChainErrors,
						"emptyAccounts": sum.EmptyAccounts,
						"netSOL":        sum.NetSOL,
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}
