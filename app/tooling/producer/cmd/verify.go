package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/foldchain/blockchain/foundation/blockchain/accumulator"
	"github.com/foldchain/blockchain/foundation/blockchain/field"
	"github.com/spf13/cobra"
)

type membershipProof struct {
	BlockID string              `json:"block_id"`
	Digest  field.Element       `json:"digest"`
	Witness accumulator.Witness `json:"witness"`
	State   accumulator.State   `json:"state"`
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Fetch and check the membership proof for a block",
	Run:   verifyRun,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	verifyCmd.Flags().StringVarP(&blockID, "block", "b", "", "Id of the block.")
}

func verifyRun(cmd *cobra.Command, args []string) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/proof/block/%s", url, blockID))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("proof request failed: %s", resp.Status)
	}

	decoder := json.NewDecoder(resp.Body)
	var proof membershipProof
	if err := decoder.Decode(&proof); err != nil {
		log.Fatal(err)
	}

	// The check runs locally. The node handed over the state and witness,
	// trusting its answer is not required.
	verified := accumulator.Verify(proof.State, proof.Digest, proof.Witness)

	fmt.Println("Block: ", proof.BlockID)
	fmt.Println("Verified: ", verified)
}
