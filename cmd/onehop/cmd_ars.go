package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"onehop/internal/ars"
	"onehop/internal/asset"
	"onehop/internal/trapi"
)

var (
	arsDumpJSON  bool
	arsSubject   string
	arsPredicate string
	arsObject    string
)

// arsCmd retrieves an archived response from the Autonomous Relay System
var arsCmd = &cobra.Command{
	Use:   "ars [message-pk]",
	Short: "Retrieve a stored TRAPI response from the ARS by message primary key",
	Long: `Probes the known ARS deployments for a message primary key and prints a
summary of the stored TRAPI response. When --subject, --predicate, and --object
are all given, also checks that the named edge is present in the response.

Example:
  onehop ars 2bbd2f45-33fd-4b4a-b569-04d2db4b6a10 --json
  onehop ars 2bbd2f45-33fd-4b4a-b569-04d2db4b6a10 \
    --subject DRUGBANK:DB01592 --predicate biolink:treats --object MONDO:0011426`,
	Args: cobra.ExactArgs(1),
	RunE: runARS,
}

func init() {
	arsCmd.Flags().BoolVar(&arsDumpJSON, "json", false, "Dump the full TRAPI response as JSON")
	arsCmd.Flags().StringVar(&arsSubject, "subject", "", "Subject CURIE of an edge to look for in the response")
	arsCmd.Flags().StringVar(&arsPredicate, "predicate", "", "Predicate of the edge to look for")
	arsCmd.Flags().StringVar(&arsObject, "object", "", "Object CURIE of the edge to look for")
}

func runARS(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetARSTimeout())
	defer cancel()

	client := ars.NewClient(ars.Config{
		Hosts:   cfg.ARS.Hosts,
		Timeout: cfg.GetARSTimeout(),
	})

	pk := args[0]
	resp, host, err := client.RetrieveResult(ctx, pk)
	if err != nil {
		if errors.Is(err, ars.ErrCollectionID) {
			return fmt.Errorf("%s is a collection id on %s; pass the primary key of one of its child messages", pk, host)
		}
		return err
	}

	if arsDumpJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Printf("message %s retrieved from %s\n", pk, host)
	if resp.Message == nil {
		fmt.Println("response carries no message")
		return nil
	}
	var nodes, edges int
	if resp.Message.KnowledgeGraph != nil {
		nodes = len(resp.Message.KnowledgeGraph.Nodes)
		edges = len(resp.Message.KnowledgeGraph.Edges)
	}
	fmt.Printf("knowledge graph: %d nodes, %d edges\n", nodes, edges)
	fmt.Printf("results: %d\n", len(resp.Message.Results))
	if resp.SchemaVersion != "" {
		fmt.Printf("schema version: %s\n", resp.SchemaVersion)
	}
	if resp.BiolinkVersion != "" {
		fmt.Printf("biolink version: %s\n", resp.BiolinkVersion)
	}

	if arsSubject != "" || arsPredicate != "" || arsObject != "" {
		if arsSubject == "" || arsPredicate == "" || arsObject == "" {
			return fmt.Errorf("--subject, --predicate, and --object must be given together")
		}
		a := asset.BuildTestAsset(arsSubject, arsPredicate, arsObject, asset.TopAnswer)
		edge := a.Edge(cfg.Target.BiolinkVersion)
		if trapi.EdgeInResponse(edge, resp) {
			fmt.Printf("edge %s found in response\n", edge.EdgeID())
			return nil
		}
		return fmt.Errorf("edge %s not found in response", edge.EdgeID())
	}
	return nil
}
