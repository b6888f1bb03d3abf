// Package mq публикует события выполнения в RabbitMQ.
//
// Движок — только продюсер: переходы состояний узлов, flows и chains
// уходят в topic-обменник nodeflow.events, откуда их читают внешние
// подписчики (UI, интеграции). Публикация best-effort: её ошибки
// не влияют на ход запуска.
package mq
