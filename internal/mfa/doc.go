// Package mfa implementa la máquina de estados de enrolamiento MFA por
// teléfono contra el identity provider.
//
// # Estados
//
//	Idle → ChallengeReady → CodeSent → Enrolled
//
// Failed es absorbente desde cualquier estado no terminal; Retry vuelve de
// Failed a ChallengeReady reutilizando el mismo challenge handle.
//
// # Propiedad del challenge handle
//
// El handle (widget invisible de detección de bots) pertenece a la sesión
// que lo creó y se libera en TODA salida: enrolamiento exitoso, abandono
// explícito o expulsión por TTL. La liberación está centralizada en el hook
// de evicción del session store, así ningún camino de salida puede filtrar
// un handle.
//
// # Concurrencia
//
// Una sola transición en vuelo por sesión. Un segundo intento concurrente
// sobre la misma sesión falla con ErrBusy: la serialización la impone el
// orquestador, no el deshabilitado de botones en la UI.
package mfa
