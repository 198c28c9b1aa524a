// Package solanaids holds compatibility-critical program and mint
// identifiers used across the DEX connectors.
package solanaids

import "github.com/gagliardetto/solana-go"

var (
	// PumpAmmProgramID is the pump.fun AMM program address.
	PumpAmmProgramID = solana.MustPublicKeyFromBase58("pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA")

	// WrappedSOLMint is the canonical wrapped native SOL mint.
	WrappedSOLMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

	// OrcaWhirlpoolProgramID is the Orca Whirlpools (concentrated liquidity) program address.
	OrcaWhirlpoolProgramID = solana.MustPublicKeyFromBase58("whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc")

	// RaydiumAMMProgramID is the Raydium constant-product AMM program address.
	RaydiumAMMProgramID = solana.MustPublicKeyFromBase58("DRaycpLY18LhpbydsBWbVJtxpNv9oXPgjRSfpF2bWpYb")
)
