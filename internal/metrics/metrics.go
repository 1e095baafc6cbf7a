package metrics

const Namespace = "weekplan"
