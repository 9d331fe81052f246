// Command rv0prove is the CLI front end: `run` is reserved for a future
// trace-acquisition front end (out of scope for this module, per spec);
// `prove --trace <path>` wires pkg/trace through pkg/builder and
// pkg/circuit to pkg/backend.MockBackend and writes the resulting
// proof artifacts as hex files.
package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rv0-labs/rv0prove/pkg/backend"
	"github.com/rv0-labs/rv0prove/pkg/builder"
	"github.com/rv0-labs/rv0prove/pkg/circuit"
	"github.com/rv0-labs/rv0prove/pkg/trace"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rv0prove",
		Short: "Prove correct execution of an RV64IM-subset instruction trace",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a program and produce a trace (reserved)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("run: trace acquisition is out of scope for this module; " +
				"produce a trace JSON with an external RISC-V interpreter and pass it to 'prove --trace'")
		},
	}

	var tracePath, codePath, inputPath, outDir string
	var k uint32

	proveCmd := &cobra.Command{
		Use:   "prove",
		Short: "Replay a trace, synthesize the circuit, and emit params.hex/vk.hex/proof.hex",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProve(tracePath, codePath, inputPath, outDir, k)
		},
	}
	proveCmd.Flags().StringVar(&tracePath, "trace", "", "path to the trace JSON file")
	proveCmd.Flags().StringVar(&codePath, "program-code", "", "path to raw little-endian program-code half-words (optional)")
	proveCmd.Flags().StringVar(&inputPath, "program-input", "", "path to raw program-input bytes (optional)")
	proveCmd.Flags().StringVar(&outDir, "out", ".", "directory to write the proof artifacts into")
	proveCmd.Flags().Uint32Var(&k, "k", 10, "circuit size parameter passed to keygen")
	if err := proveCmd.MarkFlagRequired("trace"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(runCmd, proveCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runProve(tracePath, codePath, inputPath, outDir string, k uint32) error {
	f, err := os.Open(tracePath)
	if err != nil {
		return fmt.Errorf("prove: open trace: %w", err)
	}
	defer f.Close()

	tr, err := trace.Decode(f)
	if err != nil {
		return fmt.Errorf("prove: decode trace: %w", err)
	}

	eb := builder.NewEntryBuilder()
	if err := eb.Build(tr); err != nil {
		return fmt.Errorf("prove: replay: %w", err)
	}

	programCode, err := readProgramCode(codePath)
	if err != nil {
		return err
	}
	programInput, err := readProgramInput(inputPath)
	if err != nil {
		return err
	}

	mainCircuit := circuit.NewMain(eb, programCode, programInput)
	instances := backend.Instances{ProgramCode: programCode, ProgramInput: programInput}

	var be backend.MockBackend
	vk, params, err := be.Keygen(k, mainCircuit)
	if err != nil {
		return fmt.Errorf("prove: keygen: %w", err)
	}
	proof, err := be.Prove(params, mainCircuit, instances)
	if err != nil {
		return fmt.Errorf("prove: %w", err)
	}

	vkHex, err := vk.MarshalHex()
	if err != nil {
		return fmt.Errorf("prove: encode vk: %w", err)
	}

	artifacts := map[string]string{
		"params.hex":        params.Verifier().MarshalHex(),
		"vk.hex":            vkHex,
		"proof.hex":         proof.MarshalHex(),
		"program-code.hex":  backend.EncodeProgramCodeHex(programCode),
		"program-input.hex": backend.EncodeProgramInputHex(programInput),
	}
	for name, contents := range artifacts {
		if err := os.WriteFile(filepath.Join(outDir, name), []byte(contents), 0o644); err != nil {
			return fmt.Errorf("prove: write %s: %w", name, err)
		}
	}

	fmt.Printf("wrote proof artifacts to %s\n", outDir)
	return nil
}

func readProgramCode(path string) ([]uint16, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("prove: read program code: %w", err)
	}
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("prove: program code file has odd byte length %d", len(raw))
	}
	code := make([]uint16, len(raw)/2)
	for i := range code {
		code[i] = binary.LittleEndian.Uint16(raw[2*i:])
	}
	return code, nil
}

func readProgramInput(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("prove: read program input: %w", err)
	}
	return raw, nil
}
