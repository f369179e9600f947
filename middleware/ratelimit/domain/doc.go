// Package domain define contratos e tipos de domínio para o rate limit de janela fixa.
//
// Este pacote não depende de net/http nem de implementações concretas.
package domain
