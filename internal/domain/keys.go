package domain

// KeyPrefix namespaces every key the service writes, so a shared
// Redis/Valkey instance can host other applications.
const KeyPrefix = "recipedex:"
