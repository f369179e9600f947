// Package ratelimit fornece o adapter HTTP (net/http) do rate limit de janela fixa.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: caso de uso (contagem na janela, allow/deny, retry-after) sem net/http
//   - infra: implementações concretas (store em memória, Redis, estatísticas)
//   - ratelimit (este pacote): middleware HTTP + extração de chave + tradução para status/headers
//
// Fluxo no gateway:
//
//  1. Extrai a chave do cliente (X-Forwarded-For, X-Real-IP ou "unknown")
//  2. Chama a camada application para obter a decisão
//  3. Se bloqueado, responde 429 com Retry-After e X-RateLimit-*
//  4. Se permitido, grava X-RateLimit-* e chama o próximo handler (gate de sessão)
//
// Janela (60s), capacidade (60) e limite de poda (10.000 chaves) são fixos.
package ratelimit
