// Package api — HTTP API сервера.
//
// Маршруты строятся на паттернах ServeMux Go 1.22 (метод + path values),
// ответы имеют единый конверт {data|error}. CRUD цепочек и flows,
// синхронные запуски, экспорт/импорт бандлов, расписания.
package api
